package packet

import (
	"github.com/muurk/pktdecode/internal/bitstream"
)

// DefaultMaxDepth is the default limit on operator nesting. Zero means
// unlimited; the parser keeps its own stack, so depth is bounded only by the
// input length.
const DefaultMaxDepth = 0

// Options control the parser.
type Options struct {
	// MaxDepth limits operator nesting. Zero means unlimited.
	MaxDepth int
	// StrictPadding rejects non-zero bits after the last top-level packet.
	StrictPadding bool
}

// Option mutates Options.
type Option func(*Options)

// WithMaxDepth sets the operator nesting limit.
func WithMaxDepth(n int) Option {
	return func(o *Options) { o.MaxDepth = n }
}

// WithStrictPadding enables or disables trailing padding validation.
func WithStrictPadding(strict bool) Option {
	return func(o *Options) { o.StrictPadding = strict }
}

// DefaultOptions returns the parser defaults.
func DefaultOptions() Options {
	return Options{MaxDepth: DefaultMaxDepth}
}

// Parser is a recursive-descent decoder. It holds no state between calls
// and may be shared.
type Parser struct {
	opts Options
}

// NewParser creates a parser with the default options adjusted by opts.
func NewParser(opts ...Option) *Parser {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Parser{opts: o}
}

// Options returns the parser's effective options.
func (p *Parser) Options() Options {
	return p.opts
}

// ParseOne decodes a single packet, with all of its descendants, starting at
// the cursor's position.
func (p *Parser) ParseOne(c *bitstream.Cursor) (Packet, error) {
	return p.parse(c)
}

// ParseAll decodes top-level packets until fewer than MinPacketBits remain.
// The remaining bits are padding; they are only checked under StrictPadding.
func (p *Parser) ParseAll(c *bitstream.Cursor) ([]Packet, error) {
	var packets []Packet
	for c.Remaining() >= MinPacketBits {
		pkt, err := p.ParseOne(c)
		if err != nil {
			return nil, err
		}
		packets = append(packets, pkt)
	}

	if p.opts.StrictPadding && !c.AllZero() {
		return nil, newError(ErrTypePadding, c.Position(), nil,
			"%d trailing bits %s are not all zero", c.Remaining(), c.String())
	}
	return packets, nil
}

// frame is an operator whose children are still being decoded
type frame struct {
	op *Operator
	// in is the cursor the operator was read from, body the one its children
	// are read from. They are the same cursor under count framing.
	in   *bitstream.Cursor
	body *bitstream.Cursor
	// total is the declared bit length under length framing
	total int
	// pending is the number of children still expected under count framing
	pending uint64
	// childAt is where the child being decoded starts
	childAt int
}

func (f *frame) done() bool {
	if f.op.LengthType == LengthTypeBits {
		return f.body.Remaining() == 0
	}
	return f.pending == 0
}

func (f *frame) add(child Packet) {
	f.op.Children = append(f.op.Children, child)
	if f.op.LengthType == LengthTypeCount {
		f.pending--
	}
}

// finish moves the parent cursor past the operator and records its length
func (f *frame) finish() error {
	if f.op.LengthType == LengthTypeBits {
		if err := f.in.Skip(f.total); err != nil {
			return cursorError(err, f.in.Position(), "children")
		}
	}
	f.op.Length = f.in.Position() - f.op.Offset
	return nil
}

// parse decodes one packet tree depth-first, left to right, on an explicit
// stack of open operators.
func (p *Parser) parse(c *bitstream.Cursor) (Packet, error) {
	var stack []*frame
	for {
		in := c
		if n := len(stack); n > 0 {
			in = stack[n-1].body
			stack[n-1].childAt = in.Position()
		}

		lit, open, err := p.parseHead(in, len(stack))
		if err != nil {
			return nil, overrunError(stack, err)
		}
		switch {
		case open != nil:
			stack = append(stack, open)
		case len(stack) == 0:
			return lit, nil
		default:
			stack[len(stack)-1].add(lit)
		}

		for stack[len(stack)-1].done() {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if err := top.finish(); err != nil {
				return nil, err
			}
			if len(stack) == 0 {
				return top.op, nil
			}
			stack[len(stack)-1].add(top.op)
		}
	}
}

// parseHead decodes a literal completely, or an operator header together
// with its framing. depth is the number of enclosing operators.
func (p *Parser) parseHead(c *bitstream.Cursor, depth int) (*Literal, *frame, error) {
	start := c.Position()

	version, err := c.Read(versionWidth)
	if err != nil {
		return nil, nil, cursorError(err, start, "version")
	}
	typeID, err := c.Read(typeIDWidth)
	if err != nil {
		return nil, nil, cursorError(err, start, "type ID")
	}

	head := Header{
		Version: uint8(version),
		TypeID:  TypeID(typeID),
		Offset:  start,
	}

	if head.TypeID == TypeLiteral {
		value, err := readLiteral(c)
		if err != nil {
			return nil, nil, err
		}
		head.Length = c.Position() - start
		return &Literal{Header: head, Value: value}, nil, nil
	}

	if p.opts.MaxDepth > 0 && depth >= p.opts.MaxDepth {
		return nil, nil, newError(ErrTypeDepthExceeded, start, nil,
			"operator nesting exceeds %d levels", p.opts.MaxDepth)
	}

	byCount, err := c.ReadBit()
	if err != nil {
		return nil, nil, cursorError(err, c.Position(), "length type")
	}

	f := &frame{op: &Operator{Header: head}, in: c}
	if byCount {
		f.op.LengthType = LengthTypeCount
		at := c.Position()
		count, err := c.Read(childCountWidth)
		if err != nil {
			return nil, nil, cursorError(err, at, "child count")
		}
		f.body, f.pending = c, count
		f.op.Children = make([]Packet, 0, count)
		return nil, f, nil
	}

	f.op.LengthType = LengthTypeBits
	at := c.Position()
	total, err := c.Read(totalLengthWidth)
	if err != nil {
		return nil, nil, cursorError(err, at, "total length")
	}
	f.total = int(total)
	f.body, err = c.Sub(f.total)
	if err != nil {
		return nil, nil, newError(ErrTypeLengthMismatch, at, err,
			"declared %d bits of children but only %d remain", total, c.Remaining())
	}
	return nil, f, nil
}

// overrunError reports an underflow inside a length-framed operator as a
// child overrunning the declared length. The innermost such operator is
// blamed.
func overrunError(stack []*frame, err error) error {
	if TypeOf(err) != ErrTypeUnderflow {
		return err
	}
	for i := len(stack) - 1; i >= 0; i-- {
		f := stack[i]
		if f.op.LengthType != LengthTypeBits {
			continue
		}
		limit := f.body.Position() + f.body.Remaining()
		return newError(ErrTypeLengthMismatch, f.childAt, err,
			"child overruns declared length of %d bits ending at bit %d", f.total, limit)
	}
	return err
}

func readLiteral(c *bitstream.Cursor) (uint64, error) {
	var value uint64
	for {
		at := c.Position()
		group, err := c.Read(groupWidth)
		if err != nil {
			return 0, cursorError(err, at, "literal group")
		}
		if value>>60 != 0 {
			return 0, newError(ErrTypeOverflow, at, nil, "literal value exceeds 64 bits")
		}
		value = value<<4 | group&0x0F
		if group&0x10 == 0 {
			return value, nil
		}
	}
}

// Decode converts hex to bits and parses every top-level packet.
func Decode(hex string, opts ...Option) ([]Packet, error) {
	c, err := toBits(hex)
	if err != nil {
		return nil, err
	}
	return NewParser(opts...).ParseAll(c)
}

// DecodeOne decodes hex and requires exactly one top-level packet.
func DecodeOne(hex string, opts ...Option) (Packet, error) {
	packets, err := Decode(hex, opts...)
	if err != nil {
		return nil, err
	}
	if len(packets) != 1 {
		return nil, newError(ErrTypeTopLevel, 0, nil,
			"expected exactly one top-level packet, got %d", len(packets))
	}
	return packets[0], nil
}

func toBits(hex string) (*bitstream.Cursor, error) {
	c, err := bitstream.FromHex(hex)
	if err != nil {
		return nil, newError(ErrTypeMalformedHex, 0, err, "cannot convert input to bits")
	}
	return c, nil
}
