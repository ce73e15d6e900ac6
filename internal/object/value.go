package object

import (
	"errors"

	"github.com/danmuck/serialforce/internal/envelope"
	"github.com/rs/zerolog/log"
)

// Built-in variant names. The name is the wire identity of a variant.
const (
	NameTypeResolver     = "TypeResolver"
	NameNull             = "Null"
	NameByteBuffer       = "ByteBuffer"
	NameText             = "Text"
	NameInt16            = "Int16"
	NameInt32            = "Int32"
	NameInt64            = "Int64"
	NameUInt8            = "UInt8"
	NameUInt16           = "UInt16"
	NameUInt32           = "UInt32"
	NameUInt64           = "UInt64"
	NameFloat16          = "Float16"
	NameFloat32          = "Float32"
	NameFloat64          = "Float64"
	NameSerialArray      = "SerialArray"
	NameSerialDictionary = "SerialDictionary"
)

var builtinNames = []string{
	NameTypeResolver,
	NameNull,
	NameByteBuffer,
	NameText,
	NameInt16,
	NameInt32,
	NameInt64,
	NameUInt8,
	NameUInt16,
	NameUInt32,
	NameUInt64,
	NameFloat16,
	NameFloat32,
	NameFloat64,
	NameSerialArray,
	NameSerialDictionary,
}

var (
	ErrIndexOutOfRange = errors.New("object: index out of range")
	ErrKeyNotFound     = errors.New("object: key not found")
	ErrDuplicateKey    = errors.New("object: duplicate key")
)

// Value is one serializable variant.
type Value interface {
	// TypeName is the stable variant name digested into the envelope header.
	TypeName() string
	// Reset restores the variant's default value.
	Reset()
	EncodePayload() []byte
	// DecodePayload replaces the value with the one encoded in payload.
	DecodePayload(payload []byte) error
}

// BuiltinNames returns the built-in variant names in registration order.
func BuiltinNames() []string {
	out := make([]string, len(builtinNames))
	copy(out, builtinNames)
	return out
}

// Marshal returns v wrapped in an envelope.
func Marshal(v Value) []byte {
	return envelope.Encode(v.TypeName(), v.EncodePayload())
}

// Unmarshal decodes data into v. On any failure v is left at its default
// value. data is not retained.
func Unmarshal(data []byte, v Value) error {
	v.Reset()
	payload, err := envelope.Decode(data, v.TypeName())
	if err != nil {
		return err
	}
	if err := v.DecodePayload(payload); err != nil {
		v.Reset()
		log.Debug().Str("type", v.TypeName()).Int("payload", len(payload)).Err(err).Msg("object.Unmarshal payload rejected")
		return err
	}
	return nil
}

// NewValue returns a default instance of the built-in variant called name.
func NewValue(name string) (Value, bool) {
	switch name {
	case NameTypeResolver:
		return NewTypeResolver(), true
	case NameNull:
		return &Null{}, true
	case NameByteBuffer:
		return &ByteBuffer{}, true
	case NameText:
		return &Text{}, true
	case NameInt16:
		return &Int16{}, true
	case NameInt32:
		return &Int32{}, true
	case NameInt64:
		return &Int64{}, true
	case NameUInt8:
		return &UInt8{}, true
	case NameUInt16:
		return &UInt16{}, true
	case NameUInt32:
		return &UInt32{}, true
	case NameUInt64:
		return &UInt64{}, true
	case NameFloat16:
		return &Float16{}, true
	case NameFloat32:
		return &Float32{}, true
	case NameFloat64:
		return &Float64{}, true
	case NameSerialArray:
		return &SerialArray{}, true
	case NameSerialDictionary:
		return &SerialDictionary{}, true
	default:
		return nil, false
	}
}
