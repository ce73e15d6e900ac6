package envelope

import (
	"errors"
	"fmt"
)

var (
	ErrTooShort          = errors.New("envelope: too short")
	ErrTypeMismatch      = errors.New("envelope: type mismatch")
	ErrLengthMismatch    = errors.New("envelope: length mismatch")
	ErrIntegrityMismatch = errors.New("envelope: integrity mismatch")
	ErrTooLarge          = errors.New("envelope: exceeds size limit")
)

// DecodeError carries the context of a failed Decode. It unwraps to one of the
// sentinel errors above.
type DecodeError struct {
	TypeName string
	Size     int
	Declared uint32
	Err      error
}

func (e *DecodeError) Error() string {
	if e.TypeName == "" {
		return fmt.Sprintf("%v (size=%d declared=%d)", e.Err, e.Size, e.Declared)
	}
	return fmt.Sprintf("%v: type=%q size=%d declared=%d", e.Err, e.TypeName, e.Size, e.Declared)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
