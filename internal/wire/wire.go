// Package wire holds the little-endian length-prefixed framing shared by the
// container payloads.
package wire

import (
	"encoding/binary"
	"errors"
	"math"
)

const LenPrefix = 4

var (
	ErrShortPrefix = errors.New("wire: short length prefix")
	ErrShortBlock  = errors.New("wire: short block")
	ErrTrailing    = errors.New("wire: trailing bytes")
)

// Writer appends framed values to an owned buffer.
type Writer struct {
	buf []byte
}

func NewWriter(sizeHint int) *Writer {
	return &Writer{buf: make([]byte, 0, sizeHint)}
}

func (w *Writer) U32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// Count writes a collection size.
func (w *Writer) Count(n int) {
	w.U32(checkedLen(n))
}

// Block writes len(b) followed by b.
func (w *Writer) Block(b []byte) {
	w.U32(checkedLen(len(b)))
	w.buf = append(w.buf, b...)
}

// Raw writes b with no prefix.
func (w *Writer) Raw(b []byte) {
	w.buf = append(w.buf, b...)
}

func (w *Writer) Bytes() []byte {
	return w.buf
}

// Reader walks a framed payload. It never retains slices of its input in the
// values it returns.
type Reader struct {
	buf []byte
	off int
}

func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

func (r *Reader) U32() (uint32, error) {
	if r.Remaining() < LenPrefix {
		return 0, ErrShortPrefix
	}
	v := binary.LittleEndian.Uint32(r.buf[r.off : r.off+LenPrefix])
	r.off += LenPrefix
	return v, nil
}

// Count reads a collection size and rejects counts that cannot fit in the
// remaining bytes given minItem bytes per item.
func (r *Reader) Count(minItem int) (int, error) {
	n, err := r.U32()
	if err != nil {
		return 0, err
	}
	if minItem > 0 && uint64(n)*uint64(minItem) > uint64(r.Remaining()) {
		return 0, ErrShortBlock
	}
	return int(n), nil
}

// Block reads one length-prefixed block and returns a copy.
func (r *Reader) Block() ([]byte, error) {
	l, err := r.U32()
	if err != nil {
		return nil, err
	}
	if uint64(l) > uint64(r.Remaining()) {
		return nil, ErrShortBlock
	}
	out := make([]byte, l)
	copy(out, r.buf[r.off:r.off+int(l)])
	r.off += int(l)
	return out, nil
}

// Rest returns a copy of every unread byte and consumes them.
func (r *Reader) Rest() []byte {
	out := make([]byte, r.Remaining())
	copy(out, r.buf[r.off:])
	r.off = len(r.buf)
	return out
}

// Done fails with ErrTrailing if unread bytes remain.
func (r *Reader) Done() error {
	if r.Remaining() != 0 {
		return ErrTrailing
	}
	return nil
}

func checkedLen(n int) uint32 {
	if n < 0 || uint64(n) > math.MaxUint32 {
		panic("wire: length exceeds uint32 prefix")
	}
	return uint32(n)
}
