package object

import (
	"fmt"

	"github.com/danmuck/serialforce/internal/envelope"
	"github.com/danmuck/serialforce/internal/wire"
)

// TypeResolver maps envelope type tokens back to variant names by probing an
// ordered, append-only list of known names. Duplicates are allowed and the
// first match wins.
//
// A resolver may be shared read-only across goroutines; Register and Merge
// need external synchronization.
type TypeResolver struct {
	names  []string
	tokens []envelope.Token
}

// NewTypeResolver returns a resolver seeded with every built-in name.
func NewTypeResolver() *TypeResolver {
	r := &TypeResolver{}
	r.Reset()
	return r
}

func (*TypeResolver) TypeName() string { return NameTypeResolver }

// Reset restores the built-in name set.
func (r *TypeResolver) Reset() {
	r.Clear()
	for _, name := range builtinNames {
		r.Register(name)
	}
}

// Clear drops every name, built-ins included.
func (r *TypeResolver) Clear() {
	r.names = nil
	r.tokens = nil
}

// Register appends name to the probe order.
func (r *TypeResolver) Register(name string) {
	r.names = append(r.names, name)
	r.tokens = append(r.tokens, envelope.TypeToken(name))
}

// Merge appends other's names after the receiver's.
func (r *TypeResolver) Merge(other *TypeResolver) {
	if other == nil {
		return
	}
	r.names = append(r.names, other.names...)
	r.tokens = append(r.tokens, other.tokens...)
}

func (r *TypeResolver) Len() int {
	return len(r.names)
}

// NameAt returns the i-th registered name, or "" when i is out of range.
func (r *TypeResolver) NameAt(i int) string {
	if i < 0 || i >= len(r.names) {
		return ""
	}
	return r.names[i]
}

func (r *TypeResolver) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Resolve classifies data by its type token without decoding the payload. It
// returns "" when data is shorter than a header or no registered name matches.
func (r *TypeResolver) Resolve(data []byte) string {
	if r == nil {
		return ""
	}
	h, err := envelope.ParseHeader(data)
	if err != nil {
		return ""
	}
	for i, token := range r.tokens {
		if token == h.Type {
			return r.names[i]
		}
	}
	return ""
}

func (r *TypeResolver) EncodePayload() []byte {
	w := wire.NewWriter(wire.LenPrefix * (1 + len(r.names)))
	w.Count(len(r.names))
	for _, name := range r.names {
		w.Block(envelope.EncodeText(name))
	}
	return w.Bytes()
}

func (r *TypeResolver) DecodePayload(payload []byte) error {
	rd := wire.NewReader(payload)
	n, err := rd.Count(wire.LenPrefix)
	if err != nil {
		return fmt.Errorf("%w: resolver count: %w", envelope.ErrLengthMismatch, err)
	}
	next := &TypeResolver{
		names:  make([]string, 0, n),
		tokens: make([]envelope.Token, 0, n),
	}
	for i := 0; i < n; i++ {
		raw, err := rd.Block()
		if err != nil {
			return fmt.Errorf("%w: resolver name %d: %w", envelope.ErrLengthMismatch, i, err)
		}
		next.Register(envelope.DecodeText(raw))
	}
	if err := rd.Done(); err != nil {
		return fmt.Errorf("%w: resolver: %w", envelope.ErrLengthMismatch, err)
	}
	*r = *next
	return nil
}
