package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/muurk/pktdecode/internal/config"
	"github.com/muurk/pktdecode/internal/logging"
	"github.com/muurk/pktdecode/internal/packet"
	"github.com/muurk/pktdecode/internal/version"
)

// errReported is returned after a failure box has been written to stderr
var errReported = errors.New("failure already reported")

// app holds the global flags and the settings resolved from them
type app struct {
	configPath    string
	logLevel      string
	format        string
	strictPadding bool
	maxDepth      int
	noColor       bool
	inputFile     string

	settings *config.Settings
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "pktdecode",
		Short: "Bit-packed packet decoder",
		Long: `Decode hierarchical bit-packed packet transmissions.

A transmission is given as hex digits. Pktdecode parses the packet tree,
sums every version field, and evaluates the operator expression.

Settings are read from the config file (see 'pktdecode config path');
flags override them.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to settings file (default: user config dir)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error); silent if unset")
	flags.StringVar(&a.format, "format", config.FormatDetailed, "Output format (detailed, compact, tree, json)")
	flags.BoolVar(&a.strictPadding, "strict-padding", false, "Reject non-zero bits after the last packet")
	flags.IntVar(&a.maxDepth, "max-depth", packet.DefaultMaxDepth, "Operator nesting limit (0 = unlimited)")
	flags.BoolVar(&a.noColor, "no-color", false, "Disable styled output")
	flags.StringVarP(&a.inputFile, "file", "f", "", "Read hex input from a file")

	rootCmd.AddCommand(
		a.decodeCmd(),
		a.sumCmd(),
		a.evalCmd(),
		a.solveCmd(),
		a.inspectCmd(),
		a.serveCmd(),
		a.scanCmd(),
		a.remoteCmd(),
		a.configCmd(),
		a.versionCmd(),
	)

	return rootCmd
}

// setup initialises logging and merges flags over the loaded settings
func (a *app) setup(cmd *cobra.Command) error {
	if err := logging.Initialize(a.logLevel); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	var (
		settings *config.Settings
		err      error
	)
	if a.configPath != "" {
		settings, err = config.LoadFile(a.configPath)
	} else {
		settings, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		settings.Output.Format = a.format
	}
	if flags.Changed("no-color") {
		settings.Output.Color = !a.noColor
	}
	if flags.Changed("strict-padding") {
		settings.Decoder.StrictPadding = a.strictPadding
	}
	if flags.Changed("max-depth") {
		settings.Decoder.MaxDepth = a.maxDepth
	}

	if err := settings.Validate(); err != nil {
		return err
	}
	a.settings = settings
	return nil
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.settings.Output.Format == config.FormatJSON {
				return writeJSON(cmd.OutOrStdout(), version.Get())
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "pktdecode %s (commit: %s)\n", version.Version, version.Commit)
			return err
		},
	}
}
