package envelope

import (
	"golang.org/x/text/encoding/unicode"
)

// UTF-16 little-endian, no byte-order mark.
var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// EncodeText returns s as UTF-16LE code units. Invalid UTF-8 sequences are
// replaced with U+FFFD.
func EncodeText(s string) []byte {
	if s == "" {
		return []byte{}
	}
	out, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		// The encoder substitutes rather than fails; keep a usable result anyway.
		return []byte{}
	}
	return out
}

// DecodeText converts UTF-16LE code units back to a Go string. An odd trailing
// byte or an unpaired surrogate decodes as U+FFFD.
func DecodeText(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	out, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return ""
	}
	return string(out)
}
