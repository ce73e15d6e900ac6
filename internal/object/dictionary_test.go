package object

import (
	"errors"
	"reflect"
	"testing"

	"github.com/danmuck/serialforce/internal/envelope"
	"github.com/danmuck/serialforce/internal/testutil/testlog"
	"github.com/danmuck/serialforce/internal/wire"
)

func TestSerialDictionaryOverwriteKeepsSingleEntry(t *testing.T) {
	testlog.Start(t)
	var d SerialDictionary
	d.SetData("age", &Int32{Value: 30})
	d.SetData("age", &Int32{Value: 31})

	if d.Len() != 1 {
		t.Fatalf("entry count: got=%d want=1", d.Len())
	}
	target := &Int32{}
	if err := d.TryGetData("age", target); err != nil || target.Value != 31 {
		t.Fatalf("TryGetData: value=%d err=%v", target.Value, err)
	}
}

func TestSerialDictionaryAccessors(t *testing.T) {
	testlog.Start(t)
	r := NewTypeResolver()
	var d SerialDictionary
	d.SetData("name", &Text{Value: "ada"})
	d.SetData("ratio", &Float32{Value: 0.25})
	d.SetData("blob", NewByteBuffer([]byte{1, 2}))

	if got := d.Keys(); !reflect.DeepEqual(got, []string{"name", "ratio", "blob"}) {
		t.Fatalf("keys: %v", got)
	}
	if d.KeyAt(1) != "ratio" || d.KeyAt(3) != "" || d.KeyAt(-1) != "" {
		t.Fatalf("KeyAt mismatch")
	}
	if d.TypeOf("blob", r) != NameByteBuffer || d.TypeOf("missing", r) != "" {
		t.Fatalf("TypeOf mismatch")
	}
	if err := d.TryGetData("missing", &Text{}); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
	if err := d.TryGetData("name", &Int32{}); !errors.Is(err, envelope.ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
	if !d.Has("ratio") || d.Has("nope") {
		t.Fatalf("Has mismatch")
	}
	if _, ok := d.EnvelopeOf("name"); !ok {
		t.Fatalf("EnvelopeOf missing")
	}

	if !d.Delete("ratio") || d.Delete("ratio") {
		t.Fatalf("Delete mismatch")
	}
	if d.Len() != 2 || d.KeyAt(1) != "blob" {
		t.Fatalf("delete did not shift keys: %v", d.Keys())
	}
	b := &ByteBuffer{}
	if err := d.TryGetData("blob", b); err != nil || len(b.Data) != 2 {
		t.Fatalf("value not shifted with key: data=%v err=%v", b.Data, err)
	}
}

func TestSerialDictionaryRoundTripNested(t *testing.T) {
	testlog.Start(t)
	var child SerialDictionary
	child.SetData("x", &Int64{Value: -9})

	var list SerialArray
	list.Append(&Text{Value: "one"})
	list.Append(&child)

	var d SerialDictionary
	d.SetData("", &Null{})
	d.SetData("list", &list)
	d.SetData("child", &child)
	d.SetData("ключ", &UInt16{Value: 65535})

	var out SerialDictionary
	if err := Unmarshal(Marshal(&d), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(out.Keys(), d.Keys()) {
		t.Fatalf("keys: got=%v want=%v", out.Keys(), d.Keys())
	}
	var gotChild SerialDictionary
	if err := out.TryGetData("child", &gotChild); err != nil {
		t.Fatalf("child: %v", err)
	}
	x := &Int64{}
	if err := gotChild.TryGetData("x", x); err != nil || x.Value != -9 {
		t.Fatalf("child.x: value=%d err=%v", x.Value, err)
	}
	var gotList SerialArray
	if err := out.TryGetData("list", &gotList); err != nil || gotList.Len() != 2 {
		t.Fatalf("list: len=%d err=%v", gotList.Len(), err)
	}
	u := &UInt16{}
	if err := out.TryGetData("ключ", u); err != nil || u.Value != 65535 {
		t.Fatalf("unicode key: value=%d err=%v", u.Value, err)
	}

	var empty SerialDictionary
	var emptyOut SerialDictionary
	emptyOut.SetData("stale", &Null{})
	if err := Unmarshal(Marshal(&empty), &emptyOut); err != nil || emptyOut.Len() != 0 {
		t.Fatalf("empty dictionary: len=%d err=%v", emptyOut.Len(), err)
	}
}

func TestSerialDictionaryNestedValuesFailureClearsKeys(t *testing.T) {
	testlog.Start(t)
	var d SerialDictionary
	d.SetData("keep", &Int32{Value: 1})

	var src SerialDictionary
	src.SetData("a", &Int32{Value: 2})
	payload := src.EncodePayload()
	payload[len(payload)-1] ^= 0xFF // corrupt the nested values envelope

	err := d.DecodePayload(payload)
	if !errors.Is(err, envelope.ErrIntegrityMismatch) {
		t.Fatalf("expected ErrIntegrityMismatch, got %v", err)
	}
	if d.Len() != 0 || len(d.Keys()) != 0 {
		t.Fatalf("expected keys rolled back, got %v", d.Keys())
	}
	if d.values.Len() != 0 {
		t.Fatalf("values left behind: %d", d.values.Len())
	}
}

func TestSerialDictionaryKeyValueCountMismatch(t *testing.T) {
	testlog.Start(t)
	var values SerialArray
	values.Append(&Null{})
	values.Append(&Null{})

	w := wire.NewWriter(0)
	w.Count(1)
	w.Block(envelope.EncodeText("only"))
	w.Raw(Marshal(&values))

	var d SerialDictionary
	d.SetData("keep", &Null{})
	if err := d.DecodePayload(w.Bytes()); !errors.Is(err, envelope.ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
	if d.Len() != 0 {
		t.Fatalf("expected cleared dictionary, len=%d", d.Len())
	}
}

func TestSerialDictionaryMalformedKeysLeaveStateUnchanged(t *testing.T) {
	testlog.Start(t)
	var d SerialDictionary
	d.SetData("keep", &Int32{Value: 5})

	truncated := wire.NewWriter(0)
	truncated.Count(1)
	truncated.U32(64) // key length with no key bytes behind it
	if err := d.DecodePayload(truncated.Bytes()); !errors.Is(err, envelope.ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}

	var values SerialArray
	values.Append(&Null{})
	values.Append(&Null{})
	dup := wire.NewWriter(0)
	dup.Count(2)
	dup.Block(envelope.EncodeText("k"))
	dup.Block(envelope.EncodeText("k"))
	dup.Raw(Marshal(&values))
	if err := d.DecodePayload(dup.Bytes()); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	v := &Int32{}
	if err := d.TryGetData("keep", v); err != nil || v.Value != 5 {
		t.Fatalf("dictionary changed by key-stage failure: value=%d err=%v", v.Value, err)
	}
}

func TestSerialDictionaryMissingValuesEnvelope(t *testing.T) {
	testlog.Start(t)
	w := wire.NewWriter(0)
	w.Count(0)
	var d SerialDictionary
	d.SetData("keep", &Null{})
	if err := d.DecodePayload(w.Bytes()); !errors.Is(err, envelope.ErrTooShort) {
		t.Fatalf("expected ErrTooShort, got %v", err)
	}
	if d.Len() != 0 {
		t.Fatalf("expected cleared dictionary")
	}
}

func TestSerialDictionarySetEnvelope(t *testing.T) {
	testlog.Start(t)
	var d SerialDictionary
	d.SetEnvelope("n", Marshal(&Int32{Value: 1}))
	d.SetEnvelope("n", Marshal(&Int32{Value: 2}))
	d.SetEnvelope("junk", []byte{1, 2, 3})
	if d.Len() != 2 {
		t.Fatalf("len: %d", d.Len())
	}
	v := &Int32{}
	if err := d.TryGetData("n", v); err != nil || v.Value != 2 {
		t.Fatalf("n: value=%d err=%v", v.Value, err)
	}
	if err := d.TryGetData("junk", v); !errors.Is(err, envelope.ErrTooShort) {
		t.Fatalf("expected ErrTooShort, got %v", err)
	}
}

func TestSerialDictionaryInvalidUTF8KeysShareWireKey(t *testing.T) {
	testlog.Start(t)
	var d SerialDictionary
	d.SetData("\xff", &Int32{Value: 1})
	d.SetData("\xfe", &Int32{Value: 2})
	if d.Len() != 1 {
		t.Fatalf("entry count: got=%d want=1 keys=%q", d.Len(), d.Keys())
	}
	if !d.Has("\xff") || !d.Has("\uFFFD") {
		t.Fatalf("keys: %q", d.Keys())
	}

	var out SerialDictionary
	if err := Unmarshal(Marshal(&d), &out); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if out.Len() != 1 || out.KeyAt(0) != d.KeyAt(0) {
		t.Fatalf("decoded keys: %q want %q", out.Keys(), d.Keys())
	}
	v := &Int32{}
	if err := out.TryGetData("\xff", v); err != nil || v.Value != 2 {
		t.Fatalf("TryGetData: value=%d err=%v", v.Value, err)
	}
	if !out.Delete("\xfe") || out.Len() != 0 {
		t.Fatalf("delete by original key: len=%d", out.Len())
	}
}

func TestSerialDictionaryEnvelopeAt(t *testing.T) {
	testlog.Start(t)
	var d SerialDictionary
	d.SetData("a", &UInt8{Value: 7})
	raw, ok := d.EnvelopeAt(0)
	if !ok || !envelope.IsType(raw, NameUInt8) {
		t.Fatalf("EnvelopeAt(0): ok=%v", ok)
	}
	if _, ok := d.EnvelopeAt(1); ok {
		t.Fatalf("EnvelopeAt(1) should be out of range")
	}
}
