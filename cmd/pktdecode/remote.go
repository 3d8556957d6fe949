package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/pktdecode/internal/config"
	"github.com/muurk/pktdecode/internal/service"
)

func (a *app) remoteCmd() *cobra.Command {
	var (
		addr     string
		timeout  int
		insecure bool
	)

	cmd := &cobra.Command{
		Use:   "remote [HEX]",
		Short: "Decode with a running decode service",
		Long: `Send a transmission to a 'pktdecode serve' instance and print its answer.

Without --addr the service is located over mDNS; this works when exactly one
service answers. Decoder flags such as --strict-padding apply on the server,
not here.`,
		Example: `  pktdecode remote --addr ws://127.0.0.1:8716/decode 9C0141080250320F1802104A08

  # Service started with 'serve --tls'
  pktdecode remote --addr wss://bench-1.local:8716/decode --insecure D2FE28

  # Locate the service over mDNS, print the raw response
  pktdecode remote --file input.txt --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readInput(args, a.inputFile, cmd.InOrStdin())
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(timeout)*time.Second)
			defer cancel()

			if addr == "" {
				addr, err = findService(ctx, cmd.ErrOrStderr())
				if err != nil {
					return err
				}
			}

			var opts []service.DialOption
			if insecure {
				opts = append(opts, service.WithTLSConfig(&tls.Config{InsecureSkipVerify: true})) //nolint:gosec // opt-in for self-signed services
			}

			client, err := service.Dial(ctx, addr, opts...)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			resp, err := client.Decode(ctx, service.Request{Hex: in.text})
			if err != nil {
				return err
			}
			return a.printRemote(cmd, resp)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Service URL, e.g. ws://host:8716/decode (default: discover over mDNS)")
	cmd.Flags().IntVar(&timeout, "timeout", 30, "Overall timeout in seconds")
	cmd.Flags().BoolVar(&insecure, "insecure", false, "Skip certificate verification for wss:// (self-signed services)")
	return cmd
}

func (a *app) printRemote(cmd *cobra.Command, resp *service.Response) error {
	out := cmd.OutOrStdout()
	if a.settings.Output.Format == config.FormatJSON {
		if err := writeJSON(out, resp); err != nil {
			return err
		}
		if !resp.OK {
			return errReported
		}
		return nil
	}

	if !resp.OK {
		return fmt.Errorf("remote decode failed (%s): %s", resp.ErrorType, resp.Error)
	}

	if a.settings.Output.Format == config.FormatCompact {
		_, err := fmt.Fprintf(out, "%d %d\n", resp.VersionSum, resp.Value)
		return err
	}
	_, err := fmt.Fprintf(out, "version sum: %d\nvalue:       %d\n", resp.VersionSum, resp.Value)
	return err
}
