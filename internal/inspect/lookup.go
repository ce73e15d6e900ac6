package inspect

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/danmuck/serialforce/internal/object"
)

var ErrNotContainer = errors.New("inspect: not a container")

// Lookup follows a dotted path (keys for dictionaries, decimal indices for
// arrays) from the root envelope and returns a copy of the envelope it names.
// A key containing a dot is written with `\.`, and a literal backslash as `\\`.
// An empty path returns the root.
func Lookup(data []byte, path string, r *object.TypeResolver) ([]byte, error) {
	cur := append([]byte{}, data...)
	if strings.TrimSpace(path) == "" {
		return cur, nil
	}
	for _, seg := range splitPath(path) {
		switch name := r.Resolve(cur); name {
		case object.NameSerialDictionary:
			var d object.SerialDictionary
			if err := object.Unmarshal(cur, &d); err != nil {
				return nil, fmt.Errorf("lookup %q: %w", seg, err)
			}
			raw, ok := d.EnvelopeOf(seg)
			if !ok {
				return nil, fmt.Errorf("lookup %q: %w", seg, object.ErrKeyNotFound)
			}
			cur = raw
		case object.NameSerialArray:
			i, err := strconv.Atoi(seg)
			if err != nil {
				return nil, fmt.Errorf("lookup %q: array index: %w", seg, err)
			}
			var a object.SerialArray
			if err := object.Unmarshal(cur, &a); err != nil {
				return nil, fmt.Errorf("lookup %q: %w", seg, err)
			}
			raw, ok := a.EnvelopeAt(i)
			if !ok {
				return nil, fmt.Errorf("lookup %q: %w", seg, object.ErrIndexOutOfRange)
			}
			cur = raw
		default:
			return nil, fmt.Errorf("lookup %q: %w (type %q)", seg, ErrNotContainer, name)
		}
	}
	return cur, nil
}

func splitPath(path string) []string {
	var segs []string
	var cur strings.Builder
	for i := 0; i < len(path); i++ {
		switch c := path[i]; {
		case c == '\\' && i+1 < len(path) && (path[i+1] == '.' || path[i+1] == '\\'):
			i++
			cur.WriteByte(path[i])
		case c == '.':
			segs = append(segs, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	return append(segs, cur.String())
}
