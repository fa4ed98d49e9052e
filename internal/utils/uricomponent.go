// internal/utils/uricomponent.go
package utils

import (
	"fmt"
	"strings"
	"unicode/utf8"

	reacherrors "github.com/valpere/reachlist/internal/errors"
)

const upperHex = "0123456789ABCDEF"

// DecodeURIComponent decodes every %XX escape in s. It fails when an escape is
// truncated, uses non-hex digits, or when a run of escapes does not form a
// valid UTF-8 sequence. Characters outside escapes are copied unchanged.
func DecodeURIComponent(s string) (string, error) {
	if strings.IndexByte(s, '%') < 0 {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		if s[i] != '%' {
			b.WriteByte(s[i])
			i++
			continue
		}

		lead, ok := hexByteAt(s, i)
		if !ok {
			return "", fmt.Errorf("%w at offset %d", reacherrors.ErrDecode, i)
		}
		i += 3

		if lead < utf8.RuneSelf {
			b.WriteByte(lead)
			continue
		}

		n := utf8SequenceLength(lead)
		if n == 0 {
			return "", fmt.Errorf("%w: invalid UTF-8 lead byte %%%02X", reacherrors.ErrDecode, lead)
		}

		seq := make([]byte, 1, n)
		seq[0] = lead
		for k := 1; k < n; k++ {
			if i >= len(s) || s[i] != '%' {
				return "", fmt.Errorf("%w: truncated UTF-8 sequence", reacherrors.ErrDecode)
			}
			cont, ok := hexByteAt(s, i)
			if !ok {
				return "", fmt.Errorf("%w at offset %d", reacherrors.ErrDecode, i)
			}
			seq = append(seq, cont)
			i += 3
		}

		if !utf8.Valid(seq) {
			return "", fmt.Errorf("%w: invalid UTF-8 sequence", reacherrors.ErrDecode)
		}
		b.Write(seq)
	}

	return b.String(), nil
}

// EncodeURIComponent percent-encodes s the way browsers do for URI components:
// ASCII letters, digits and -_.!~*'() are kept, every other UTF-8 byte becomes
// %XX with upper-case hex. Invalid UTF-8 bytes are encoded as U+FFFD.
func EncodeURIComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	var buf [utf8.UTFMax]byte
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			if isURIComponentUnreserved(c) {
				b.WriteByte(c)
			} else {
				writeEscape(&b, c)
			}
			i++
			continue
		}

		r, size := utf8.DecodeRuneInString(s[i:])
		n := utf8.EncodeRune(buf[:], r)
		for _, x := range buf[:n] {
			writeEscape(&b, x)
		}
		i += size
	}

	return b.String()
}

func writeEscape(b *strings.Builder, c byte) {
	b.WriteByte('%')
	b.WriteByte(upperHex[c>>4])
	b.WriteByte(upperHex[c&0x0F])
}

func isURIComponentUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}

// hexByteAt parses the escape "%XX" starting at s[i].
func hexByteAt(s string, i int) (byte, bool) {
	if i+2 >= len(s) {
		return 0, false
	}
	hi, ok1 := unhex(s[i+1])
	lo, ok2 := unhex(s[i+2])
	if !ok1 || !ok2 {
		return 0, false
	}
	return hi<<4 | lo, true
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func utf8SequenceLength(lead byte) int {
	switch {
	case lead&0xE0 == 0xC0:
		return 2
	case lead&0xF0 == 0xE0:
		return 3
	case lead&0xF8 == 0xF0:
		return 4
	}
	return 0
}
