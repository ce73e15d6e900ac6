package object

import (
	"fmt"
	"unicode/utf8"

	"github.com/danmuck/serialforce/internal/envelope"
	"github.com/danmuck/serialforce/internal/wire"
)

// SerialDictionary maps unique string keys to envelopes, in insertion order.
// keys[i] belongs to values slot i.
type SerialDictionary struct {
	keys   []string
	values SerialArray
}

func (*SerialDictionary) TypeName() string { return NameSerialDictionary }
func (d *SerialDictionary) Reset()         { d.Clear() }

// Len is the entry count.
func (d *SerialDictionary) Len() int {
	return len(d.keys)
}

// wireKey returns key as it reads back after a UTF-16 round trip. Invalid
// UTF-8 is substituted during encoding, so distinct Go strings can share one
// wire key.
func wireKey(key string) string {
	if utf8.ValidString(key) {
		return key
	}
	return envelope.DecodeText(envelope.EncodeText(key))
}

func (d *SerialDictionary) indexOf(key string) int {
	key = wireKey(key)
	for i, k := range d.keys {
		if k == key {
			return i
		}
	}
	return -1
}

// SetData stores v under key, overwriting in place when key exists.
func (d *SerialDictionary) SetData(key string, v Value) {
	if i := d.indexOf(key); i >= 0 {
		d.values.ReplaceAt(i, v)
		return
	}
	d.keys = append(d.keys, wireKey(key))
	d.values.Append(v)
}

// SetEnvelope stores a copy of an already encoded envelope under key. The bytes
// are not validated until read.
func (d *SerialDictionary) SetEnvelope(key string, raw []byte) {
	if i := d.indexOf(key); i >= 0 {
		d.values.items[i] = append([]byte{}, raw...)
		return
	}
	d.keys = append(d.keys, wireKey(key))
	d.values.AppendEnvelope(raw)
}

// TryGetData decodes the value under key into target.
func (d *SerialDictionary) TryGetData(key string, target Value) error {
	i := d.indexOf(key)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return d.values.TryGetAt(i, target)
}

func (d *SerialDictionary) Has(key string) bool {
	return d.indexOf(key) >= 0
}

// Delete removes key and its value. It reports whether key was present.
func (d *SerialDictionary) Delete(key string) bool {
	i := d.indexOf(key)
	if i < 0 {
		return false
	}
	d.keys = append(d.keys[:i], d.keys[i+1:]...)
	d.values.RemoveAt(i)
	return true
}

// KeyAt returns the i-th key, or "" when i is out of range.
func (d *SerialDictionary) KeyAt(i int) string {
	if !d.values.InRange(i) {
		return ""
	}
	return d.keys[i]
}

func (d *SerialDictionary) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// TypeOf classifies the value under key with r.
func (d *SerialDictionary) TypeOf(key string, r *TypeResolver) string {
	i := d.indexOf(key)
	if i < 0 {
		return ""
	}
	return d.values.TypeNameAt(i, r)
}

// EnvelopeOf returns a copy of the raw envelope stored under key.
func (d *SerialDictionary) EnvelopeOf(key string) ([]byte, bool) {
	i := d.indexOf(key)
	if i < 0 {
		return nil, false
	}
	return d.values.EnvelopeAt(i)
}

// EnvelopeAt returns a copy of the i-th raw envelope.
func (d *SerialDictionary) EnvelopeAt(i int) ([]byte, bool) {
	return d.values.EnvelopeAt(i)
}

func (d *SerialDictionary) Clear() {
	d.keys = nil
	d.values.Clear()
}

// EncodePayload frames each key and then nests the whole values array as one
// envelope.
func (d *SerialDictionary) EncodePayload() []byte {
	values := Marshal(&d.values)
	w := wire.NewWriter(wire.LenPrefix*(1+len(d.keys)) + len(values))
	w.Count(len(d.keys))
	for _, key := range d.keys {
		w.Block(envelope.EncodeText(key))
	}
	w.Raw(values)
	return w.Bytes()
}

// DecodePayload leaves the dictionary untouched when the key section is
// malformed, and clears it when the nested values envelope is rejected.
func (d *SerialDictionary) DecodePayload(payload []byte) error {
	r := wire.NewReader(payload)
	n, err := r.Count(wire.LenPrefix)
	if err != nil {
		return fmt.Errorf("%w: dictionary count: %w", envelope.ErrLengthMismatch, err)
	}
	keys := make([]string, 0, n)
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		raw, err := r.Block()
		if err != nil {
			return fmt.Errorf("%w: dictionary key %d: %w", envelope.ErrLengthMismatch, i, err)
		}
		key := envelope.DecodeText(raw)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateKey, key)
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	var values SerialArray
	if err := Unmarshal(r.Rest(), &values); err != nil {
		d.Clear()
		return fmt.Errorf("dictionary values: %w", err)
	}
	if values.Len() != len(keys) {
		d.Clear()
		return fmt.Errorf("%w: dictionary has %d keys and %d values", envelope.ErrLengthMismatch, len(keys), values.Len())
	}
	d.keys = keys
	d.values = values
	return nil
}
