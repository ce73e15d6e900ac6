// Package inspect walks envelope trees whose types are not known up front.
package inspect

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	"github.com/danmuck/serialforce/internal/envelope"
	"github.com/danmuck/serialforce/internal/object"
	"github.com/rs/zerolog/log"
)

const DefaultMaxDepth = 64

var ErrMaxDepth = errors.New("inspect: max depth exceeded")

// Node describes one envelope. Type is "" when the resolver does not know the
// type token.
type Node struct {
	Type       string `json:"type" cbor:"type"`
	TypeToken  string `json:"type_token" cbor:"type_token"`
	Size       int    `json:"size" cbor:"size"`
	PayloadLen uint32 `json:"payload_len" cbor:"payload_len"`
	Valid      bool   `json:"valid" cbor:"valid"`
	Error      string `json:"error,omitempty" cbor:"error,omitempty"`
	Key        string `json:"key,omitempty" cbor:"key,omitempty"`
	Value      any    `json:"value,omitempty" cbor:"value,omitempty"`
	Children   []Node `json:"children,omitempty" cbor:"children,omitempty"`
}

type Options struct {
	MaxDepth int
}

// Stats counts nodes by outcome.
type Stats struct {
	Nodes   int
	Unknown int
	Invalid int
}

// Inspect classifies data with r and, for known types, decodes it. Container
// children are inspected recursively.
func Inspect(data []byte, r *object.TypeResolver, opts Options) Node {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	return inspect(data, r, opts, 0)
}

func inspect(data []byte, r *object.TypeResolver, opts Options, depth int) Node {
	n := Node{Size: len(data), Type: r.Resolve(data)}
	h, err := envelope.Verify(data)
	if len(data) >= envelope.HeaderLen {
		n.TypeToken = h.Type.String()
		n.PayloadLen = h.PayloadLen
	}
	if err != nil {
		n.Error = err.Error()
		return n
	}
	n.Valid = true
	if n.Type == "" {
		return n
	}
	if isContainer(n.Type) && depth >= opts.MaxDepth {
		n.Valid = false
		n.Error = ErrMaxDepth.Error()
		return n
	}

	switch n.Type {
	case object.NameSerialArray:
		var a object.SerialArray
		if err := object.Unmarshal(data, &a); err != nil {
			return invalid(n, err)
		}
		n.Children = make([]Node, 0, a.Len())
		for i := 0; i < a.Len(); i++ {
			raw, _ := a.EnvelopeAt(i)
			n.Children = append(n.Children, inspect(raw, r, opts, depth+1))
		}
	case object.NameSerialDictionary:
		var d object.SerialDictionary
		if err := object.Unmarshal(data, &d); err != nil {
			return invalid(n, err)
		}
		n.Children = make([]Node, 0, d.Len())
		for i := 0; i < d.Len(); i++ {
			raw, _ := d.EnvelopeAt(i)
			child := inspect(raw, r, opts, depth+1)
			child.Key = d.KeyAt(i)
			n.Children = append(n.Children, child)
		}
	default:
		v, ok := object.NewValue(n.Type)
		if !ok {
			// Registered application type; framing is all we can check.
			return n
		}
		if err := object.Unmarshal(data, v); err != nil {
			return invalid(n, err)
		}
		n.Value = Scalar(v)
	}
	return n
}

func isContainer(name string) bool {
	switch name {
	case object.NameSerialArray, object.NameSerialDictionary, object.NameTypeResolver:
		return true
	}
	return false
}

func invalid(n Node, err error) Node {
	log.Debug().Str("type", n.Type).Err(err).Msg("inspect payload rejected")
	n.Valid = false
	n.Error = err.Error()
	return n
}

// Scalar returns a JSON- and CBOR-friendly rendition of a non-container value.
// A Node is built once and rendered in either format, so byte buffers are hex
// strings in both.
func Scalar(v object.Value) any {
	switch x := v.(type) {
	case *object.Null:
		return nil
	case *object.ByteBuffer:
		return hex.EncodeToString(x.Data)
	case *object.Text:
		return x.Value
	case *object.Int16:
		return x.Value
	case *object.Int32:
		return x.Value
	case *object.Int64:
		return x.Value
	case *object.UInt8:
		return x.Value
	case *object.UInt16:
		return x.Value
	case *object.UInt32:
		return x.Value
	case *object.UInt64:
		return x.Value
	case *object.Float16:
		return finite(float64(x.Value.Float32()))
	case *object.Float32:
		return finite(float64(x.Value))
	case *object.Float64:
		return finite(x.Value)
	case *object.TypeResolver:
		return x.Names()
	default:
		return fmt.Sprintf("<%s>", v.TypeName())
	}
}

// NaN and infinities have no JSON number form.
func finite(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Sprint(f)
	}
	return f
}

// Count walks n and tallies outcomes.
func Count(n Node) Stats {
	s := Stats{Nodes: 1}
	if !n.Valid {
		s.Invalid++
	} else if n.Type == "" {
		s.Unknown++
	}
	for _, child := range n.Children {
		cs := Count(child)
		s.Nodes += cs.Nodes
		s.Unknown += cs.Unknown
		s.Invalid += cs.Invalid
	}
	return s
}
