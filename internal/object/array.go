package object

import (
	"fmt"

	"github.com/danmuck/serialforce/internal/envelope"
	"github.com/danmuck/serialforce/internal/wire"
)

// SerialArray is an ordered list of envelopes. Elements may be of different
// variants; the reader names the expected variant on every TryGetAt.
type SerialArray struct {
	items [][]byte
}

func (*SerialArray) TypeName() string { return NameSerialArray }
func (a *SerialArray) Reset()         { a.Clear() }

func (a *SerialArray) Len() int {
	return len(a.items)
}

func (a *SerialArray) InRange(i int) bool {
	return i >= 0 && i < len(a.items)
}

// Append encodes v and adds it at the end.
func (a *SerialArray) Append(v Value) {
	a.items = append(a.items, Marshal(v))
}

// AppendEnvelope adds a copy of an already encoded envelope. The bytes are not
// validated until read.
func (a *SerialArray) AppendEnvelope(raw []byte) {
	a.items = append(a.items, append([]byte{}, raw...))
}

// ReplaceAt overwrites slot i. Out-of-range indices are ignored.
func (a *SerialArray) ReplaceAt(i int, v Value) {
	if !a.InRange(i) {
		return
	}
	a.items[i] = Marshal(v)
}

// RemoveAt deletes slot i and shifts later slots down. Out-of-range indices
// are ignored.
func (a *SerialArray) RemoveAt(i int) {
	if !a.InRange(i) {
		return
	}
	a.items = append(a.items[:i], a.items[i+1:]...)
}

func (a *SerialArray) Clear() {
	a.items = nil
}

// TryGetAt decodes slot i into target, using target's variant as the expected
// type.
func (a *SerialArray) TryGetAt(i int, target Value) error {
	if !a.InRange(i) {
		return fmt.Errorf("%w: %d (len=%d)", ErrIndexOutOfRange, i, len(a.items))
	}
	return Unmarshal(a.items[i], target)
}

// TypeNameAt classifies slot i with r, or returns "" when i is out of range or
// the type is unknown to r.
func (a *SerialArray) TypeNameAt(i int, r *TypeResolver) string {
	if !a.InRange(i) {
		return ""
	}
	return r.Resolve(a.items[i])
}

// EnvelopeAt returns a copy of the raw envelope in slot i.
func (a *SerialArray) EnvelopeAt(i int) ([]byte, bool) {
	if !a.InRange(i) {
		return nil, false
	}
	return append([]byte{}, a.items[i]...), true
}

func (a *SerialArray) EncodePayload() []byte {
	size := wire.LenPrefix
	for _, item := range a.items {
		size += wire.LenPrefix + len(item)
	}
	w := wire.NewWriter(size)
	w.Count(len(a.items))
	for _, item := range a.items {
		w.Block(item)
	}
	return w.Bytes()
}

// DecodePayload replaces the elements only if the whole payload parses.
func (a *SerialArray) DecodePayload(payload []byte) error {
	r := wire.NewReader(payload)
	n, err := r.Count(wire.LenPrefix)
	if err != nil {
		return fmt.Errorf("%w: array count: %w", envelope.ErrLengthMismatch, err)
	}
	items := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		item, err := r.Block()
		if err != nil {
			return fmt.Errorf("%w: array element %d: %w", envelope.ErrLengthMismatch, i, err)
		}
		items = append(items, item)
	}
	if err := r.Done(); err != nil {
		return fmt.Errorf("%w: array: %w", envelope.ErrLengthMismatch, err)
	}
	a.items = items
	return nil
}
