package main

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/muurk/pktdecode/internal/bitstream"
	"github.com/muurk/pktdecode/internal/inspect"
	"github.com/muurk/pktdecode/internal/logging"
	"github.com/muurk/pktdecode/internal/packet"
)

// decode parses every top-level packet of a transmission
func (a *app) decode(in input) ([]packet.Packet, error) {
	start := time.Now()
	packets, err := packet.Decode(in.text, a.settings.DecoderOptions()...)
	logging.LogDecode(in.source, in.text, len(packets), len(in.text)*4, time.Since(start), err)
	if err != nil && !packet.IsType(err, packet.ErrTypeMalformedHex) {
		if c, herr := bitstream.FromHex(in.text); herr == nil {
			logging.LogBits("Undecodable bit stream", c.String())
		}
	}
	return packets, err
}

// solve decodes a single-packet transmission and evaluates it
func (a *app) solve(in input) (*packet.Result, error) {
	start := time.Now()
	res, err := packet.Solve(in.text, a.settings.DecoderOptions()...)
	n, bits := 0, len(in.text)*4
	if res != nil {
		n, bits = len(res.Packets), res.Bits
	}
	logging.LogDecode(in.source, in.text, n, bits, time.Since(start), err)
	return res, err
}

func (a *app) decodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode [HEX]",
		Short: "Print the decoded packet tree",
		Long: `Decode a transmission and print every top-level packet with its children.

Each line shows the packet type, version, and the bit range it occupies.
Trailing bits after the last packet are reported as padding.`,
		Example: `  # Decode a literal
  pktdecode decode D2FE28

  # Indented tree without the summary line
  pktdecode decode 38006F45291200 --format tree

  # Read from a file, print JSON
  pktdecode decode --file input.txt --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readInput(args, a.inputFile, cmd.InOrStdin())
			if err != nil {
				return err
			}
			p := a.newPrinter(cmd)

			packets, err := a.decode(in)
			if err != nil {
				return p.fail("DECODE FAILED", err)
			}
			return p.packets(packets, len(in.text)*4)
		},
	}
}

func (a *app) sumCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sum [HEX]",
		Short: "Print the sum of all version fields",
		Long: `Decode a transmission and print the sum of the version field of every
packet at every depth, across all top-level packets.`,
		Example: `  pktdecode sum 8A004A801A8002F478
  cat input.txt | pktdecode sum`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readInput(args, a.inputFile, cmd.InOrStdin())
			if err != nil {
				return err
			}
			p := a.newPrinter(cmd)

			packets, err := a.decode(in)
			if err != nil {
				return p.fail("DECODE FAILED", err)
			}
			return p.number("version_sum", packet.SumAll(packets))
		},
	}
}

func (a *app) evalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "eval [HEX]",
		Short: "Print the value of the expression",
		Long: `Decode a transmission holding exactly one top-level packet and evaluate
the expression it encodes.`,
		Example: `  pktdecode eval 9C0141080250320F1802104A08
  pktdecode eval --file input.txt --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readInput(args, a.inputFile, cmd.InOrStdin())
			if err != nil {
				return err
			}
			p := a.newPrinter(cmd)

			res, err := a.solve(in)
			if err != nil {
				return p.fail("EVALUATION FAILED", err)
			}
			return p.number("value", res.Value)
		},
	}
}

func (a *app) solveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "solve [HEX]",
		Short: "Print the version sum and the expression value",
		Long: `Decode a transmission once and print both the version sum and the value
of its single top-level packet. On a terminal the result is shown in a
styled box; use --format to get plain output.`,
		Example: `  pktdecode solve 9C0141080250320F1802104A08

  # Two numbers on one line, for scripts
  pktdecode solve --file input.txt --format compact`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readInput(args, a.inputFile, cmd.InOrStdin())
			if err != nil {
				return err
			}
			p := a.newPrinter(cmd)

			res, err := a.solve(in)
			if err != nil {
				return p.fail("SOLVE FAILED", err)
			}
			return p.result(res)
		},
	}
}

func (a *app) inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [HEX]",
		Short: "Browse the packet tree interactively",
		Long: `Open a full-screen browser over the decoded packet tree.

Move with the arrow keys, fold operators with space or enter, and read the
value and version sum of the selected subtree at the bottom. Press ? for all
key bindings and q to quit.`,
		Example: `  pktdecode inspect 9C0141080250320F1802104A08
  pktdecode inspect --file input.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal(cmd.OutOrStdout()) {
				return errors.New("inspect needs a terminal; use 'decode --format tree' instead")
			}

			in, err := readInput(args, a.inputFile, cmd.InOrStdin())
			if err != nil {
				return err
			}

			packets, err := a.decode(in)
			if err != nil {
				return err
			}

			var opts []tea.ProgramOption
			if in.source == "stdin" {
				// stdin held the hex, so read keys from the terminal
				opts = append(opts, tea.WithInputTTY())
			}
			return inspect.Run(inspectTitle(in.text), packets, opts...)
		},
	}
}

func inspectTitle(hex string) string {
	const maxTitle = 32
	if len(hex) > maxTitle {
		return hex[:maxTitle] + "..."
	}
	return hex
}
