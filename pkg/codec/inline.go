package codec

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	"github.com/ssargent/rowdb/pkg/heap"
)

// MaxInlineLength is the largest byte length an inline string can declare;
// the length prefix is a single byte.
const MaxInlineLength = 255

// InlineString is a short string stored directly in the row:
// [1 length byte][length bytes of UTF-8][zero padding up to MaxLen].
type InlineString struct {
	Value  string
	MaxLen int
}

func (v *InlineString) SerializedSize() int { return 1 + v.MaxLen }

func (v *InlineString) Decode(buf []byte, _ *heap.Heap) error {
	if err := checkSize("inline string", buf, v.SerializedSize()); err != nil {
		return err
	}
	n := int(buf[0])
	if n > len(buf)-1 {
		return ErrOutOfBounds.New(n, 1, len(buf))
	}
	v.Value = lossyString(buf[1 : 1+n])
	return nil
}

func (v *InlineString) Encode(buf []byte, _ *heap.Heap) error {
	if err := checkSize("inline string", buf, v.SerializedSize()); err != nil {
		return err
	}
	if v.MaxLen > MaxInlineLength {
		return ErrLengthOverflow.New("inline string", v.MaxLen, MaxInlineLength)
	}
	n := len(v.Value)
	if n > MaxInlineLength {
		return ErrLengthOverflow.New("inline string", n, MaxInlineLength)
	}
	if n > v.MaxLen {
		return ErrLengthOverflow.New("inline string", n, v.MaxLen)
	}

	buf[0] = byte(n)
	copy(buf[1:], v.Value)
	clear(buf[1+n:])
	return nil
}

func (v *InlineString) Native() any { return v.Value }

// lossyString converts b to a string, replacing invalid UTF-8 with U+FFFD
func lossyString(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	out, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), string(utf8.RuneError))
	}
	return string(out)
}
