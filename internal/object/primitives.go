package object

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/danmuck/serialforce/internal/envelope"
	"github.com/x448/float16"
)

// Null carries no data.
type Null struct{}

func (*Null) TypeName() string      { return NameNull }
func (*Null) Reset()                {}
func (*Null) EncodePayload() []byte { return []byte{} }

func (*Null) DecodePayload(payload []byte) error {
	return checkWidth(NameNull, payload, 0)
}

// ByteBuffer holds raw bytes. Encode and decode both copy.
type ByteBuffer struct {
	Data []byte
}

func NewByteBuffer(data []byte) *ByteBuffer {
	b := &ByteBuffer{}
	b.Set(data)
	return b
}

// Set stores a copy of data.
func (b *ByteBuffer) Set(data []byte) {
	b.Data = append([]byte{}, data...)
}

func (*ByteBuffer) TypeName() string { return NameByteBuffer }
func (b *ByteBuffer) Reset()         { b.Data = []byte{} }

func (b *ByteBuffer) EncodePayload() []byte {
	return append([]byte{}, b.Data...)
}

func (b *ByteBuffer) DecodePayload(payload []byte) error {
	b.Set(payload)
	return nil
}

// Text holds a string; its payload is UTF-16LE.
type Text struct {
	Value string
}

func (*Text) TypeName() string        { return NameText }
func (t *Text) Reset()                { t.Value = "" }
func (t *Text) EncodePayload() []byte { return envelope.EncodeText(t.Value) }

// DecodePayload accepts any byte count. An odd trailing byte or an unpaired
// surrogate becomes U+FFFD rather than an error.
func (t *Text) DecodePayload(payload []byte) error {
	t.Value = envelope.DecodeText(payload)
	return nil
}

type Int16 struct{ Value int16 }

func (*Int16) TypeName() string { return NameInt16 }
func (v *Int16) Reset()         { v.Value = 0 }

func (v *Int16) EncodePayload() []byte {
	return binary.LittleEndian.AppendUint16(nil, uint16(v.Value))
}

func (v *Int16) DecodePayload(payload []byte) error {
	if err := checkWidth(NameInt16, payload, 2); err != nil {
		return err
	}
	v.Value = int16(binary.LittleEndian.Uint16(payload))
	return nil
}

type Int32 struct{ Value int32 }

func (*Int32) TypeName() string { return NameInt32 }
func (v *Int32) Reset()         { v.Value = 0 }

func (v *Int32) EncodePayload() []byte {
	return binary.LittleEndian.AppendUint32(nil, uint32(v.Value))
}

func (v *Int32) DecodePayload(payload []byte) error {
	if err := checkWidth(NameInt32, payload, 4); err != nil {
		return err
	}
	v.Value = int32(binary.LittleEndian.Uint32(payload))
	return nil
}

type Int64 struct{ Value int64 }

func (*Int64) TypeName() string { return NameInt64 }
func (v *Int64) Reset()         { v.Value = 0 }

func (v *Int64) EncodePayload() []byte {
	return binary.LittleEndian.AppendUint64(nil, uint64(v.Value))
}

func (v *Int64) DecodePayload(payload []byte) error {
	if err := checkWidth(NameInt64, payload, 8); err != nil {
		return err
	}
	v.Value = int64(binary.LittleEndian.Uint64(payload))
	return nil
}

type UInt8 struct{ Value uint8 }

func (*UInt8) TypeName() string        { return NameUInt8 }
func (v *UInt8) Reset()                { v.Value = 0 }
func (v *UInt8) EncodePayload() []byte { return []byte{v.Value} }

func (v *UInt8) DecodePayload(payload []byte) error {
	if err := checkWidth(NameUInt8, payload, 1); err != nil {
		return err
	}
	v.Value = payload[0]
	return nil
}

type UInt16 struct{ Value uint16 }

func (*UInt16) TypeName() string { return NameUInt16 }
func (v *UInt16) Reset()         { v.Value = 0 }

func (v *UInt16) EncodePayload() []byte {
	return binary.LittleEndian.AppendUint16(nil, v.Value)
}

func (v *UInt16) DecodePayload(payload []byte) error {
	if err := checkWidth(NameUInt16, payload, 2); err != nil {
		return err
	}
	v.Value = binary.LittleEndian.Uint16(payload)
	return nil
}

type UInt32 struct{ Value uint32 }

func (*UInt32) TypeName() string { return NameUInt32 }
func (v *UInt32) Reset()         { v.Value = 0 }

func (v *UInt32) EncodePayload() []byte {
	return binary.LittleEndian.AppendUint32(nil, v.Value)
}

func (v *UInt32) DecodePayload(payload []byte) error {
	if err := checkWidth(NameUInt32, payload, 4); err != nil {
		return err
	}
	v.Value = binary.LittleEndian.Uint32(payload)
	return nil
}

type UInt64 struct{ Value uint64 }

func (*UInt64) TypeName() string { return NameUInt64 }
func (v *UInt64) Reset()         { v.Value = 0 }

func (v *UInt64) EncodePayload() []byte {
	return binary.LittleEndian.AppendUint64(nil, v.Value)
}

func (v *UInt64) DecodePayload(payload []byte) error {
	if err := checkWidth(NameUInt64, payload, 8); err != nil {
		return err
	}
	v.Value = binary.LittleEndian.Uint64(payload)
	return nil
}

// Float16 is an IEEE 754 binary16 value.
type Float16 struct{ Value float16.Float16 }

func NewFloat16(f float32) *Float16 {
	return &Float16{Value: float16.Fromfloat32(f)}
}

func (*Float16) TypeName() string { return NameFloat16 }
func (v *Float16) Reset()         { v.Value = float16.Float16(0) }

func (v *Float16) EncodePayload() []byte {
	return binary.LittleEndian.AppendUint16(nil, v.Value.Bits())
}

func (v *Float16) DecodePayload(payload []byte) error {
	if err := checkWidth(NameFloat16, payload, 2); err != nil {
		return err
	}
	v.Value = float16.Frombits(binary.LittleEndian.Uint16(payload))
	return nil
}

type Float32 struct{ Value float32 }

func (*Float32) TypeName() string { return NameFloat32 }
func (v *Float32) Reset()         { v.Value = 0 }

func (v *Float32) EncodePayload() []byte {
	return binary.LittleEndian.AppendUint32(nil, math.Float32bits(v.Value))
}

func (v *Float32) DecodePayload(payload []byte) error {
	if err := checkWidth(NameFloat32, payload, 4); err != nil {
		return err
	}
	v.Value = math.Float32frombits(binary.LittleEndian.Uint32(payload))
	return nil
}

type Float64 struct{ Value float64 }

func (*Float64) TypeName() string { return NameFloat64 }
func (v *Float64) Reset()         { v.Value = 0 }

func (v *Float64) EncodePayload() []byte {
	return binary.LittleEndian.AppendUint64(nil, math.Float64bits(v.Value))
}

func (v *Float64) DecodePayload(payload []byte) error {
	if err := checkWidth(NameFloat64, payload, 8); err != nil {
		return err
	}
	v.Value = math.Float64frombits(binary.LittleEndian.Uint64(payload))
	return nil
}

func checkWidth(name string, payload []byte, width int) error {
	if len(payload) != width {
		return fmt.Errorf("%w: %s payload is %d bytes, want %d", envelope.ErrLengthMismatch, name, len(payload), width)
	}
	return nil
}
