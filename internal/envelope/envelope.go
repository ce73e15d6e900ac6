package envelope

import (
	"crypto/md5"
	"encoding/binary"
	"encoding/hex"
	"math"

	"github.com/rs/zerolog/log"
)

const (
	TokenLen  = md5.Size
	HeaderLen = TokenLen + TokenLen + 4
)

// Token is a 128-bit digest used for type identity and payload integrity.
type Token [TokenLen]byte

func (t Token) String() string {
	return hex.EncodeToString(t[:])
}

// TypeToken digests the UTF-16LE encoding of a variant name.
func TypeToken(typeName string) Token {
	return Token(md5.Sum(EncodeText(typeName)))
}

// DataToken digests raw payload bytes.
func DataToken(payload []byte) Token {
	return Token(md5.Sum(payload))
}

// Header is the fixed envelope header.
type Header struct {
	Type       Token
	Data       Token
	PayloadLen uint32
}

// Size is the total envelope length the header declares.
func (h Header) Size() int {
	return HeaderLen + int(h.PayloadLen)
}

func (h Header) Bytes() []byte {
	buf := make([]byte, HeaderLen)
	copy(buf[0:16], h.Type[:])
	copy(buf[16:32], h.Data[:])
	binary.LittleEndian.PutUint32(buf[32:36], h.PayloadLen)
	return buf
}

// ParseHeader reads the fixed header from the front of data. It does not look
// at the payload.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderLen {
		return Header{}, ErrTooShort
	}
	var h Header
	copy(h.Type[:], data[0:16])
	copy(h.Data[:], data[16:32])
	h.PayloadLen = binary.LittleEndian.Uint32(data[32:36])
	return h, nil
}

// Encode wraps payload in an envelope identified by typeName.
func Encode(typeName string, payload []byte) []byte {
	if uint64(len(payload)) > math.MaxUint32 {
		panic("envelope: payload exceeds uint32 length field")
	}
	h := Header{
		Type:       TypeToken(typeName),
		Data:       DataToken(payload),
		PayloadLen: uint32(len(payload)),
	}
	buf := make([]byte, 0, HeaderLen+len(payload))
	buf = append(buf, h.Bytes()...)
	buf = append(buf, payload...)
	return buf
}

// Decode validates data as an envelope of typeName and returns a copy of its
// payload. Checks run in order: size, type, length, integrity.
func Decode(data []byte, typeName string) ([]byte, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, decodeFailure(typeName, data, 0, err)
	}
	if h.Type != TypeToken(typeName) {
		return nil, decodeFailure(typeName, data, h.PayloadLen, ErrTypeMismatch)
	}
	payload, err := checkBody(h, data)
	if err != nil {
		return nil, decodeFailure(typeName, data, h.PayloadLen, err)
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}

// Verify checks framing and payload integrity without an expected type.
func Verify(data []byte) (Header, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return Header{}, decodeFailure("", data, 0, err)
	}
	if _, err := checkBody(h, data); err != nil {
		return h, decodeFailure("", data, h.PayloadLen, err)
	}
	return h, nil
}

// IsType reports whether data claims to be typeName. Only the type token is
// compared.
func IsType(data []byte, typeName string) bool {
	h, err := ParseHeader(data)
	if err != nil {
		return false
	}
	return h.Type == TypeToken(typeName)
}

func checkBody(h Header, data []byte) ([]byte, error) {
	if uint64(len(data)) != uint64(HeaderLen)+uint64(h.PayloadLen) {
		return nil, ErrLengthMismatch
	}
	payload := data[HeaderLen:]
	if DataToken(payload) != h.Data {
		return nil, ErrIntegrityMismatch
	}
	return payload, nil
}

func decodeFailure(typeName string, data []byte, declared uint32, err error) error {
	log.Debug().
		Str("type", typeName).
		Int("size", len(data)).
		Uint32("declared", declared).
		Err(err).
		Msg("envelope.Decode failed")
	return &DecodeError{TypeName: typeName, Size: len(data), Declared: declared, Err: err}
}
