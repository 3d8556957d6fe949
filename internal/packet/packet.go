package packet

import "fmt"

// Field widths of the wire format, in bits.
const (
	versionWidth     = 3
	typeIDWidth      = 3
	groupWidth       = 5
	totalLengthWidth = 15
	childCountWidth  = 11

	// MinPacketBits is the smallest possible packet: a header plus a single
	// literal group. Fewer remaining bits at top level are padding.
	MinPacketBits = versionWidth + typeIDWidth + groupWidth
)

// TypeID is the 3-bit packet type.
type TypeID uint8

const (
	TypeSum     TypeID = 0
	TypeProduct TypeID = 1
	TypeMinimum TypeID = 2
	TypeMaximum TypeID = 3
	TypeLiteral TypeID = 4
	TypeGreater TypeID = 5
	TypeLess    TypeID = 6
	TypeEqual   TypeID = 7
)

// String returns the short operator name used in compact output.
func (t TypeID) String() string {
	switch t {
	case TypeSum:
		return "sum"
	case TypeProduct:
		return "product"
	case TypeMinimum:
		return "min"
	case TypeMaximum:
		return "max"
	case TypeLiteral:
		return "literal"
	case TypeGreater:
		return "gt"
	case TypeLess:
		return "lt"
	case TypeEqual:
		return "eq"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// LengthType selects how an operator frames its children.
type LengthType uint8

const (
	// LengthTypeBits frames children by their total size in bits.
	LengthTypeBits LengthType = 0
	// LengthTypeCount frames children by their number.
	LengthTypeCount LengthType = 1
)

func (l LengthType) String() string {
	if l == LengthTypeBits {
		return "bits"
	}
	return "count"
}

// Header holds the fields common to every packet, plus its extent in the
// bit stream.
type Header struct {
	Version uint8
	TypeID  TypeID
	Offset  int // first bit of the packet
	Length  int // bits consumed, header included
}

// Head returns the header. It is promoted to both packet variants.
func (h Header) Head() Header { return h }

// Packet is either a *Literal or an *Operator.
type Packet interface {
	Head() Header
	String() string
}

// Literal carries a value assembled from 5-bit groups.
type Literal struct {
	Header
	Value uint64
}

func (l *Literal) String() string {
	return fmt.Sprintf("Literal{v=%d, value=%d}", l.Version, l.Value)
}

// Operator owns an ordered list of child packets.
type Operator struct {
	Header
	LengthType LengthType
	Children   []Packet
}

func (o *Operator) String() string {
	return fmt.Sprintf("Operator{v=%d, op=%s, children=%d}", o.Version, o.TypeID, len(o.Children))
}

// Walk visits p and its descendants in pre-order, depth-first and left to
// right, passing each packet's nesting depth. Returning false from fn skips
// that packet's children.
func Walk(p Packet, fn func(p Packet, depth int) bool) {
	type item struct {
		p     Packet
		depth int
	}
	stack := []item{{p: p}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !fn(it.p, it.depth) {
			continue
		}
		op, ok := it.p.(*Operator)
		if !ok {
			continue
		}
		for i := len(op.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{p: op.Children[i], depth: it.depth + 1})
		}
	}
}
