package bitstream

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedHex is returned when the input contains a non-hex character.
var ErrMalformedHex = errors.New("malformed hex")

// FromHex converts a hex string into a cursor over its bits. Every digit
// contributes exactly four bits, so odd-length input is accepted and leading
// zero digits are preserved. Surrounding whitespace is ignored.
func FromHex(s string) (*Cursor, error) {
	s = strings.TrimSpace(s)

	data := make([]byte, (len(s)+1)/2)
	for i := 0; i < len(s); i++ {
		nibble, ok := hexNibble(s[i])
		if !ok {
			return nil, fmt.Errorf("%w: invalid character %q at index %d", ErrMalformedHex, s[i], i)
		}
		if i%2 == 0 {
			data[i/2] = nibble << 4
		} else {
			data[i/2] |= nibble
		}
	}

	return &Cursor{data: data, end: len(s) * 4}, nil
}

func hexNibble(ch byte) (byte, bool) {
	switch {
	case ch >= '0' && ch <= '9':
		return ch - '0', true
	case ch >= 'a' && ch <= 'f':
		return ch - 'a' + 10, true
	case ch >= 'A' && ch <= 'F':
		return ch - 'A' + 10, true
	default:
		return 0, false
	}
}
