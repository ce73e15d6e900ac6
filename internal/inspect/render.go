package inspect

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "json":
		return FormatJSON, nil
	case "cbor":
		return FormatCBOR, nil
	default:
		return "", fmt.Errorf("inspect: unknown format %q", raw)
	}
}

func (f Format) ContentType() string {
	if f == FormatCBOR {
		return "application/cbor"
	}
	return "application/json"
}

// Marshal renders n in format f.
func Marshal(n Node, f Format) ([]byte, error) {
	switch f {
	case FormatCBOR:
		return cborMode.Marshal(n)
	case FormatJSON:
		return json.MarshalIndent(n, "", "  ")
	default:
		return nil, fmt.Errorf("inspect: unknown format %q", f)
	}
}

func Write(w io.Writer, n Node, f Format) error {
	b, err := Marshal(n, f)
	if err != nil {
		return err
	}
	if f == FormatJSON {
		b = append(b, '\n')
	}
	_, err = w.Write(b)
	return err
}

var cborMode = mustCBORMode()

func mustCBORMode() cbor.EncMode {
	mode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return mode
}
