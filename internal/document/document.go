// Package document converts TOML documents into SerialDictionary trees.
package document

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/danmuck/serialforce/internal/object"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

var ErrUnsupportedValue = errors.New("document: unsupported value")

// Parse decodes a TOML document into a dictionary. Table keys are stored in
// sorted order at every level.
func Parse(data []byte) (*object.SerialDictionary, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("document parse failed at %d:%d: %w", row, col, err)
		}
		return nil, fmt.Errorf("document parse failed: %w", err)
	}
	d, err := fromTable(raw, "")
	if err != nil {
		return nil, err
	}
	log.Debug().Int("keys", d.Len()).Msg("document.Parse ok")
	return d, nil
}

// ParseFile reads and parses the TOML document at path.
func ParseFile(path string) (*object.SerialDictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("document load failed (%s): %w", path, err)
	}
	return Parse(data)
}

// FromValue maps one decoded TOML value onto a variant.
func FromValue(v any) (object.Value, error) {
	return fromValue(v, "")
}

func fromValue(v any, path string) (object.Value, error) {
	switch x := v.(type) {
	case nil:
		return &object.Null{}, nil
	case string:
		return &object.Text{Value: x}, nil
	case int64:
		return &object.Int64{Value: x}, nil
	case float64:
		return &object.Float64{Value: x}, nil
	case bool:
		if x {
			return &object.UInt8{Value: 1}, nil
		}
		return &object.UInt8{Value: 0}, nil
	case time.Time:
		return &object.Text{Value: x.Format(time.RFC3339Nano)}, nil
	case toml.LocalDate:
		return &object.Text{Value: x.String()}, nil
	case toml.LocalTime:
		return &object.Text{Value: x.String()}, nil
	case toml.LocalDateTime:
		return &object.Text{Value: x.String()}, nil
	case []any:
		a := &object.SerialArray{}
		for i, item := range x {
			child, err := fromValue(item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			a.Append(child)
		}
		return a, nil
	case map[string]any:
		return fromTable(x, path)
	default:
		return nil, fmt.Errorf("%w: %s has type %T", ErrUnsupportedValue, path, v)
	}
}

func fromTable(table map[string]any, path string) (*object.SerialDictionary, error) {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	d := &object.SerialDictionary{}
	for _, k := range keys {
		childPath := k
		if path != "" {
			childPath = path + "." + k
		}
		child, err := fromValue(table[k], childPath)
		if err != nil {
			return nil, err
		}
		d.SetData(k, child)
	}
	return d, nil
}
