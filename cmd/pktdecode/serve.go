package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/pktdecode/internal/config"
	"github.com/muurk/pktdecode/internal/discovery"
	"github.com/muurk/pktdecode/internal/logging"
	"github.com/muurk/pktdecode/internal/service"
)

func (a *app) serveCmd() *cobra.Command {
	var (
		host      string
		port      int
		advertise bool
		instance  string
		useTLS    bool
		certPath  string
		keyPath   string
		rateLimit int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the WebSocket decode service",
		Long: `Serve the decoder over WebSocket at /decode.

Each message is one transmission, as bare hex or {"hex": "..."}; each reply
is a JSON object with ok, version_sum, value, packets and, on failure,
error and error_type. GET /healthz answers "ok".

Unless disabled, the service is advertised over mDNS as _pktdecode._tcp so
'pktdecode scan' and 'pktdecode remote' can find it. With --tls the service
speaks wss:// using a self-signed certificate generated in memory, or the
certificate given with --cert and --key. Stop with Ctrl+C.`,
		Example: `  # Serve on the configured port (default 8716)
  pktdecode serve

  # Loopback only, no mDNS, verbose logs
  pktdecode serve --host 127.0.0.1 --advertise=false --log-level debug

  # Strict padding for every request, at most 50 requests/s per client
  pktdecode serve --strict-padding --port 9000 --rate-limit 50

  # wss:// with your own certificate
  pktdecode serve --cert fullchain.pem --key privkey.pem`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The service logs at info unless told otherwise
			if a.logLevel == "" && os.Getenv(logging.LogLevelEnvVar) == "" {
				if err := logging.Initialize("info"); err != nil {
					return fmt.Errorf("failed to initialize logging: %w", err)
				}
			}

			svc := a.settings.Service
			flags := cmd.Flags()
			if flags.Changed("host") {
				svc.Host = host
			}
			if flags.Changed("port") {
				svc.Port = port
			}
			if flags.Changed("advertise") {
				svc.Advertise = advertise
			}
			if flags.Changed("instance") {
				svc.Instance = instance
			}
			if flags.Changed("tls") {
				svc.TLS = useTLS
			}
			if flags.Changed("rate-limit") {
				svc.RateLimit = rateLimit
			}
			if flags.Changed("cert") || flags.Changed("key") {
				svc.CertFile, svc.KeyFile = certPath, keyPath
			}
			if err := a.settings.Validate(); err != nil {
				return err
			}

			cfg, err := serviceConfig(a.settings)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return service.New(cfg).Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Listen host (empty = all interfaces)")
	cmd.Flags().IntVar(&port, "port", 8716, "Listen port (0 = any free port)")
	cmd.Flags().BoolVar(&advertise, "advertise", true, "Advertise the service over mDNS")
	cmd.Flags().StringVar(&instance, "instance", "", "mDNS instance name (default: hostname)")
	cmd.Flags().BoolVar(&useTLS, "tls", false, "Serve wss:// with an in-memory self-signed certificate unless --cert/--key are given")
	cmd.Flags().StringVar(&certPath, "cert", "", "Path to TLS certificate file (implies --tls)")
	cmd.Flags().StringVar(&keyPath, "key", "", "Path to TLS private key file (implies --tls)")
	cmd.Flags().IntVar(&rateLimit, "rate-limit", 0, "Requests per second per client (0 = unlimited)")

	return cmd
}

// serviceConfig builds the service configuration from merged settings
func serviceConfig(s *config.Settings) (*service.Config, error) {
	cfg := &service.Config{
		Host:      s.Service.Host,
		Port:      s.Service.Port,
		Options:   s.DecoderOptions(),
		Advertise: s.Service.Advertise,
		Instance:  s.Service.Instance,
		RateLimit: s.Service.RateLimit,
		Burst:     s.Service.Burst,
	}

	var err error
	switch {
	case s.Service.CertFile != "":
		cfg.TLS, err = service.NewTLSConfig(s.Service.CertFile, s.Service.KeyFile)
	case s.Service.TLS:
		cfg.TLS, err = service.SelfSignedTLSConfig(certHosts(s.Service.Host))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to set up TLS: %w", err)
	}
	return cfg, nil
}

// certHosts lists the names a generated certificate should cover
func certHosts(listenHost string) []string {
	hosts := []string{"localhost", "127.0.0.1", "::1"}
	if name, err := os.Hostname(); err == nil && name != "" {
		hosts = append(hosts, name, name+".local")
	}
	if listenHost != "" {
		hosts = append(hosts, listenHost)
	}
	return hosts
}

func (a *app) scanCmd() *cobra.Command {
	var timeout int

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Find decode services on the local network",
		Long: `Browse mDNS for services advertised by 'pktdecode serve' and list them
with the URL to pass to 'pktdecode remote --addr'.`,
		Example: `  # Scan for 5 seconds (default)
  pktdecode scan

  # Longer scan, JSON output
  pktdecode scan --timeout 15 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			jsonOut := a.settings.Output.Format == config.FormatJSON
			if !jsonOut {
				fmt.Fprintf(out, "Scanning for decode services (timeout: %ds)...\n\n", timeout)
			}

			scanner := discovery.NewScanner()
			scanner.Timeout = time.Duration(timeout) * time.Second
			services, err := scanner.Scan(cmd.Context())
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}

			if jsonOut {
				return writeJSON(out, scanResults(services))
			}

			if len(services) == 0 {
				fmt.Fprintln(out, "No services found.")
				fmt.Fprintln(out, "\nTroubleshooting:")
				fmt.Fprintln(out, "  - Check that 'pktdecode serve' is running without --advertise=false")
				fmt.Fprintln(out, "  - Make sure both hosts are on the same network segment")
				fmt.Fprintln(out, "  - Try increasing --timeout")
				fmt.Fprintln(out, "  - Use 'pktdecode remote --addr ws://HOST:PORT/decode' if multicast is blocked")
				return nil
			}

			fmt.Fprintf(out, "Found %d service(s):\n\n", len(services))
			for i, svc := range services {
				fmt.Fprintf(out, "%d. %s\n", i+1, svc.Instance)
				fmt.Fprintf(out, "   Host:    %s\n", svc.Hostname)
				fmt.Fprintf(out, "   URL:     %s\n", svc.URL())
				if svc.Version != "" {
					fmt.Fprintf(out, "   Version: %s\n", svc.Version)
				}
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out, "Use 'pktdecode remote --addr <url> HEX' to decode with a service")
			return nil
		},
	}

	cmd.Flags().IntVar(&timeout, "timeout", int(discovery.DefaultScanTimeout/time.Second), "Scan timeout in seconds")
	return cmd
}

// scanResult is the JSON shape of one `scan --format json` entry
type scanResult struct {
	Instance string `json:"instance"`
	Hostname string `json:"hostname"`
	URL      string `json:"url"`
	Version  string `json:"version,omitempty"`
}

func scanResults(services []*discovery.Service) []scanResult {
	results := make([]scanResult, 0, len(services))
	for _, svc := range services {
		results = append(results, scanResult{
			Instance: svc.Instance,
			Hostname: svc.Hostname,
			URL:      svc.URL(),
			Version:  svc.Version,
		})
	}
	return results
}

// findService resolves a service URL by mDNS when exactly one answers
func findService(ctx context.Context, out io.Writer) (string, error) {
	fmt.Fprintln(out, "No --addr given, looking for a decode service over mDNS...")

	scanner := discovery.NewScanner()
	scanner.Timeout = 3 * time.Second
	services, err := scanner.Scan(ctx)
	if err != nil {
		return "", fmt.Errorf("discovery failed: %w", err)
	}

	switch len(services) {
	case 0:
		return "", fmt.Errorf("no decode services found. Use --addr to give the URL")
	case 1:
		fmt.Fprintf(out, "Using %s\n\n", services[0])
		return services[0].URL(), nil
	default:
		for i, svc := range services {
			fmt.Fprintf(out, "%d. %s %s\n", i+1, svc, svc.URL())
		}
		return "", fmt.Errorf("multiple services found. Use --addr to pick one")
	}
}
