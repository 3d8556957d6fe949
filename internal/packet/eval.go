package packet

import (
	"math/bits"
)

// SumVersions returns the version of p plus the versions of all of its
// descendants.
func SumVersions(p Packet) uint64 {
	var sum uint64
	Walk(p, func(p Packet, _ int) bool {
		sum += uint64(p.Head().Version)
		return true
	})
	return sum
}

// SumAll returns the version sum across a sequence of top-level packets.
func SumAll(packets []Packet) uint64 {
	var sum uint64
	for _, p := range packets {
		sum += SumVersions(p)
	}
	return sum
}

type evalFrame struct {
	op     *Operator
	next   int
	values []uint64
}

// Evaluate computes the value of p. Children are evaluated depth-first, left
// to right, on an explicit stack so deep trees do not grow the goroutine
// stack.
func Evaluate(p Packet) (uint64, error) {
	switch root := p.(type) {
	case *Literal:
		return root.Value, nil
	case *Operator:
		stack := []*evalFrame{newEvalFrame(root)}
		for {
			top := stack[len(stack)-1]

			if top.next < len(top.op.Children) {
				child := top.op.Children[top.next]
				top.next++
				switch c := child.(type) {
				case *Literal:
					top.values = append(top.values, c.Value)
				case *Operator:
					stack = append(stack, newEvalFrame(c))
				default:
					return 0, newError(ErrTypeUnknown, top.op.Offset, nil, "unsupported packet %T", child)
				}
				continue
			}

			v, err := apply(top.op, top.values)
			if err != nil {
				return 0, err
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return v, nil
			}
			parent := stack[len(stack)-1]
			parent.values = append(parent.values, v)
		}
	default:
		return 0, newError(ErrTypeUnknown, 0, nil, "unsupported packet %T", p)
	}
}

func newEvalFrame(op *Operator) *evalFrame {
	return &evalFrame{op: op, values: make([]uint64, 0, len(op.Children))}
}

// apply folds the evaluated operands of op.
func apply(op *Operator, values []uint64) (uint64, error) {
	switch op.TypeID {
	case TypeSum:
		var sum uint64
		for _, v := range values {
			var carry uint64
			sum, carry = bits.Add64(sum, v, 0)
			if carry != 0 {
				return 0, newError(ErrTypeOverflow, op.Offset, nil, "sum exceeds 64 bits")
			}
		}
		return sum, nil

	case TypeProduct:
		product := uint64(1)
		for _, v := range values {
			var hi uint64
			hi, product = bits.Mul64(product, v)
			if hi != 0 {
				return 0, newError(ErrTypeOverflow, op.Offset, nil, "product exceeds 64 bits")
			}
		}
		return product, nil

	case TypeMinimum, TypeMaximum:
		if len(values) == 0 {
			return 0, newError(ErrTypeArity, op.Offset, nil, "%s needs at least one operand", op.TypeID)
		}
		result := values[0]
		for _, v := range values[1:] {
			if (op.TypeID == TypeMinimum && v < result) || (op.TypeID == TypeMaximum && v > result) {
				result = v
			}
		}
		return result, nil

	case TypeGreater, TypeLess, TypeEqual:
		if len(values) != 2 {
			return 0, newError(ErrTypeArity, op.Offset, nil,
				"%s needs exactly two operands, got %d", op.TypeID, len(values))
		}
		var holds bool
		switch op.TypeID {
		case TypeGreater:
			holds = values[0] > values[1]
		case TypeLess:
			holds = values[0] < values[1]
		default:
			holds = values[0] == values[1]
		}
		if holds {
			return 1, nil
		}
		return 0, nil

	default:
		return 0, newError(ErrTypeInvalidOperator, op.Offset, nil, "no operator for type ID %d", uint8(op.TypeID))
	}
}

// Result is the outcome of decoding and evaluating one transmission.
type Result struct {
	Packets    []Packet
	VersionSum uint64
	Value      uint64
	Bits       int // length of the decoded bit stream
	Padding    int // trailing bits left unparsed
}

// Solve decodes hex once and computes both the version sum over all top-level
// packets and the value of the single top-level packet.
func Solve(hex string, opts ...Option) (*Result, error) {
	c, err := toBits(hex)
	if err != nil {
		return nil, err
	}
	total := c.Len()

	packets, err := NewParser(opts...).ParseAll(c)
	if err != nil {
		return nil, err
	}
	if len(packets) != 1 {
		return nil, newError(ErrTypeTopLevel, 0, nil,
			"expected exactly one top-level packet, got %d", len(packets))
	}

	value, err := Evaluate(packets[0])
	if err != nil {
		return nil, err
	}

	return &Result{
		Packets:    packets,
		VersionSum: SumAll(packets),
		Value:      value,
		Bits:       total,
		Padding:    c.Remaining(),
	}, nil
}
