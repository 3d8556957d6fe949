package packet

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatTree renders p as an indented tree, one packet per line.
func FormatTree(p Packet) string {
	var sb strings.Builder
	Walk(p, func(p Packet, depth int) bool {
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(Describe(p))
		sb.WriteByte('\n')
		return true
	})
	return sb.String()
}

// Describe returns a single-line description of p without its children.
func Describe(p Packet) string {
	h := p.Head()
	switch pkt := p.(type) {
	case *Literal:
		return fmt.Sprintf("literal v%d = %d  [bits %d+%d]", h.Version, pkt.Value, h.Offset, h.Length)
	case *Operator:
		return fmt.Sprintf("%s v%d (%d children by %s)  [bits %d+%d]",
			h.TypeID, h.Version, len(pkt.Children), pkt.LengthType, h.Offset, h.Length)
	default:
		return p.String()
	}
}

// FormatCompact renders p as an S-expression, e.g. "(eq (sum 1 3) (product 2 2))".
func FormatCompact(p Packet) string {
	// Items with a nil packet are literal text.
	type item struct {
		p    Packet
		text string
	}

	var sb strings.Builder
	stack := []item{{p: p}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch pkt := it.p.(type) {
		case nil:
			sb.WriteString(it.text)
		case *Literal:
			fmt.Fprintf(&sb, "%d", pkt.Value)
		case *Operator:
			sb.WriteByte('(')
			sb.WriteString(pkt.TypeID.String())
			stack = append(stack, item{text: ")"})
			for i := len(pkt.Children) - 1; i >= 0; i-- {
				stack = append(stack, item{p: pkt.Children[i]}, item{text: " "})
			}
		}
	}
	return sb.String()
}

type literalJSON struct {
	Kind    string `json:"kind"`
	Version uint8  `json:"version"`
	TypeID  uint8  `json:"type_id"`
	Offset  int    `json:"offset"`
	Length  int    `json:"length"`
	Value   uint64 `json:"value"`
}

type operatorJSON struct {
	Kind       string   `json:"kind"`
	Version    uint8    `json:"version"`
	TypeID     uint8    `json:"type_id"`
	Operator   string   `json:"operator"`
	Offset     int      `json:"offset"`
	Length     int      `json:"length"`
	LengthType string   `json:"length_type"`
	Children   []Packet `json:"children"`
}

// MarshalJSON implements json.Marshaler
func (l *Literal) MarshalJSON() ([]byte, error) {
	return json.Marshal(literalJSON{
		Kind:    "literal",
		Version: l.Version,
		TypeID:  uint8(l.TypeID),
		Offset:  l.Offset,
		Length:  l.Length,
		Value:   l.Value,
	})
}

// MarshalJSON implements json.Marshaler
func (o *Operator) MarshalJSON() ([]byte, error) {
	children := o.Children
	if children == nil {
		children = []Packet{}
	}
	return json.Marshal(operatorJSON{
		Kind:       "operator",
		Version:    o.Version,
		TypeID:     uint8(o.TypeID),
		Operator:   o.TypeID.String(),
		Offset:     o.Offset,
		Length:     o.Length,
		LengthType: o.LengthType.String(),
		Children:   children,
	})
}
