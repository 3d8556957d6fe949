package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/muurk/pktdecode/internal/config"
	"github.com/muurk/pktdecode/internal/packet"
	"github.com/muurk/pktdecode/internal/ui"
)

// printer writes command results in the selected format
type printer struct {
	out    io.Writer
	errOut io.Writer
	format string
	styled bool // lipgloss output; only for detailed format on a terminal
	width  int
}

func (a *app) newPrinter(cmd *cobra.Command) *printer {
	p := &printer{
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
		format: a.settings.Output.Format,
		width:  ui.MinTerminalWidth,
	}
	if a.settings.Output.Color && p.format == config.FormatDetailed && isTerminal(p.out) {
		p.styled = true
		p.width = ui.GetTerminalWidth()
	}
	return p
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// fail reports a decode failure. Styled output gets a failure box on stderr
// and errReported so main does not print it twice.
func (p *printer) fail(title string, err error) error {
	if !p.styled {
		return err
	}
	fmt.Fprint(p.errOut, ui.RenderError(title, err, p.width))
	return errReported
}

// packets prints a decoded transmission
func (p *printer) packets(packets []packet.Packet, bits int) error {
	switch p.format {
	case config.FormatJSON:
		return writeJSON(p.out, packets)
	case config.FormatCompact:
		for _, pkt := range packets {
			fmt.Fprintln(p.out, packet.FormatCompact(pkt))
		}
	case config.FormatTree:
		for _, pkt := range packets {
			fmt.Fprint(p.out, packet.FormatTree(pkt))
		}
	default:
		fmt.Fprintf(p.out, "%d top-level packet(s), %d bits (%d padding)\n\n",
			len(packets), bits, padding(packets, bits))
		for _, pkt := range packets {
			if p.styled {
				fmt.Fprint(p.out, ui.RenderTree(pkt))
			} else {
				fmt.Fprint(p.out, packet.FormatTree(pkt))
			}
		}
	}
	return nil
}

// solveOutput is the JSON shape of `solve --format json`
type solveOutput struct {
	VersionSum uint64          `json:"version_sum"`
	Value      uint64          `json:"value"`
	Expression string          `json:"expression"`
	Bits       int             `json:"bits"`
	Padding    int             `json:"padding"`
	Packets    []packet.Packet `json:"packets"`
}

// result prints a solved transmission
func (p *printer) result(res *packet.Result) error {
	switch p.format {
	case config.FormatJSON:
		return writeJSON(p.out, solveOutput{
			VersionSum: res.VersionSum,
			Value:      res.Value,
			Expression: packet.FormatCompact(res.Packets[0]),
			Bits:       res.Bits,
			Padding:    res.Padding,
			Packets:    res.Packets,
		})
	case config.FormatCompact:
		fmt.Fprintf(p.out, "%d %d\n", res.VersionSum, res.Value)
	case config.FormatTree:
		fmt.Fprint(p.out, packet.FormatTree(res.Packets[0]))
		fmt.Fprintf(p.out, "version sum: %d\nvalue: %d\n", res.VersionSum, res.Value)
	default:
		if p.styled {
			fmt.Fprint(p.out, ui.RenderSolve(res, p.width))
			return nil
		}
		fmt.Fprintf(p.out, "version sum: %d\nvalue:       %d\n", res.VersionSum, res.Value)
	}
	return nil
}

// number prints a single value, or {key: value} for JSON
func (p *printer) number(key string, v uint64) error {
	if p.format == config.FormatJSON {
		return writeJSON(p.out, map[string]uint64{key: v})
	}
	_, err := fmt.Fprintln(p.out, v)
	return err
}

func padding(packets []packet.Packet, bits int) int {
	if len(packets) == 0 {
		return bits
	}
	last := packets[len(packets)-1].Head()
	return bits - last.Offset - last.Length
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
