package ui

import (
	"fmt"
	"strings"

	"github.com/muurk/pktdecode/internal/packet"
)

// RenderPacketLine renders a single packet without its children.
func RenderPacketLine(p packet.Packet) string {
	h := p.Head()
	version := VersionStyle.Render(fmt.Sprintf("v%d", h.Version))
	extent := ExtentStyle.Render(fmt.Sprintf("[%d+%d]", h.Offset, h.Length))

	switch pkt := p.(type) {
	case *packet.Literal:
		return fmt.Sprintf("%s %s %s", LiteralStyle.Render(fmt.Sprintf("%d", pkt.Value)), version, extent)
	case *packet.Operator:
		return fmt.Sprintf("%s %s %s %s",
			OperatorStyle.Render(h.TypeID.String()),
			version,
			ExtentStyle.Render(fmt.Sprintf("%d by %s", len(pkt.Children), pkt.LengthType)),
			extent)
	default:
		return p.String()
	}
}

// RenderTree renders p with box-drawing guides.
func RenderTree(p packet.Packet) string {
	type item struct {
		p           packet.Packet
		prefix      string
		childPrefix string
	}

	var sb strings.Builder
	stack := []item{{p: p}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		sb.WriteString(it.prefix)
		sb.WriteString(RenderPacketLine(it.p))
		sb.WriteByte('\n')

		op, ok := it.p.(*packet.Operator)
		if !ok {
			continue
		}
		// Pushed in reverse so the first child is rendered first
		for i := len(op.Children) - 1; i >= 0; i-- {
			if i == len(op.Children)-1 {
				stack = append(stack, item{op.Children[i], it.childPrefix + "└── ", it.childPrefix + "    "})
			} else {
				stack = append(stack, item{op.Children[i], it.childPrefix + "├── ", it.childPrefix + "│   "})
			}
		}
	}
	return sb.String()
}

// RenderSolve builds the result box for a decoded transmission.
func RenderSolve(res *packet.Result, width int) string {
	return NewSuccessResult(fmt.Sprintf("%d packet(s)", countPackets(res.Packets))).
		SetWidth(width).
		AddDetail("Version sum", fmt.Sprintf("%d", res.VersionSum)).
		AddDetail("Value", fmt.Sprintf("%d", res.Value)).
		AddDetail("Expression", packet.FormatCompact(res.Packets[0])).
		AddDetail("Bits", fmt.Sprintf("%d (%d padding)", res.Bits, res.Padding)).
		Render()
}

// RenderError builds the failure box for err.
func RenderError(title string, err error, width int) string {
	return NewFailureResult(title, err, packet.Troubleshooting(err)).
		SetWidth(width).
		Render()
}

func countPackets(packets []packet.Packet) int {
	n := 0
	for _, p := range packets {
		packet.Walk(p, func(packet.Packet, int) bool {
			n++
			return true
		})
	}
	return n
}
