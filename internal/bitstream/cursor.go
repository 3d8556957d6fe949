package bitstream

import (
	"errors"
	"fmt"
	"strings"
)

// MaxReadBits is the widest field a single Read can return.
const MaxReadBits = 64

var (
	// ErrUnderflow is returned when a read requests more bits than remain.
	ErrUnderflow = errors.New("bit underflow")
	// ErrWidth is returned for reads outside 0..MaxReadBits.
	ErrWidth = errors.New("invalid read width")
)

// Cursor is a read position over a packed, MSB-first bit sequence.
// Bits in [pos, end) are readable.
type Cursor struct {
	data []byte
	pos  int
	end  int
}

// Read interprets the next n bits, most significant first, as an unsigned
// integer and advances past them.
func (c *Cursor) Read(n int) (uint64, error) {
	if n < 0 || n > MaxReadBits {
		return 0, fmt.Errorf("%w: %d bits (maximum %d)", ErrWidth, n, MaxReadBits)
	}
	if n > c.Remaining() {
		return 0, fmt.Errorf("%w: need %d bits at offset %d, %d remaining",
			ErrUnderflow, n, c.pos, c.Remaining())
	}

	var v uint64
	pos := c.pos
	for n > 0 {
		off := pos % 8
		take := 8 - off
		if take > n {
			take = n
		}
		chunk := (c.data[pos/8] >> uint(8-off-take)) & (0xFF >> uint(8-take))
		v = v<<uint(take) | uint64(chunk)
		pos += take
		n -= take
	}
	c.pos = pos
	return v, nil
}

// ReadBit reads a single bit.
func (c *Cursor) ReadBit() (bool, error) {
	v, err := c.Read(1)
	return v == 1, err
}

// Skip advances the position by n bits without decoding them.
func (c *Cursor) Skip(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: skip of %d bits", ErrWidth, n)
	}
	if n > c.Remaining() {
		return fmt.Errorf("%w: cannot skip %d bits at offset %d, %d remaining",
			ErrUnderflow, n, c.pos, c.Remaining())
	}
	c.pos += n
	return nil
}

// Sub returns a cursor bounded to the next n bits. The sub-cursor shares
// storage and continues the parent's offsets; the parent does not move.
func (c *Cursor) Sub(n int) (*Cursor, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: sub-range of %d bits", ErrWidth, n)
	}
	if n > c.Remaining() {
		return nil, fmt.Errorf("%w: sub-range of %d bits at offset %d, %d remaining",
			ErrUnderflow, n, c.pos, c.Remaining())
	}
	return &Cursor{data: c.data, pos: c.pos, end: c.pos + n}, nil
}

// Remaining returns the number of unread bits.
func (c *Cursor) Remaining() int {
	return c.end - c.pos
}

// Position returns the current bit offset.
func (c *Cursor) Position() int {
	return c.pos
}

// Len returns the offset one past the last readable bit.
func (c *Cursor) Len() int {
	return c.end
}

// AllZero reports whether every unread bit is zero. It does not move the
// cursor.
func (c *Cursor) AllZero() bool {
	for i := c.pos; i < c.end; i++ {
		if c.bit(i) {
			return false
		}
	}
	return true
}

// String renders the unread bits as a string of '0' and '1'.
func (c *Cursor) String() string {
	var sb strings.Builder
	sb.Grow(c.Remaining())
	for i := c.pos; i < c.end; i++ {
		if c.bit(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

func (c *Cursor) bit(i int) bool {
	return c.data[i/8]&(0x80>>uint(i%8)) != 0
}
