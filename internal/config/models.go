package config

import (
	"fmt"

	"github.com/muurk/pktdecode/internal/packet"
)

// CurrentVersion is the settings file format version.
const CurrentVersion = 1

// Output formats understood by the CLI.
const (
	FormatDetailed = "detailed"
	FormatCompact  = "compact"
	FormatTree     = "tree"
	FormatJSON     = "json"
)

// Settings represents the entire settings file.
type Settings struct {
	Version int      `yaml:"version"`
	Decoder *Decoder `yaml:"decoder,omitempty"`
	Output  *Output  `yaml:"output,omitempty"`
	Service *Service `yaml:"service,omitempty"`
}

// Decoder holds parser options.
type Decoder struct {
	MaxDepth      int  `yaml:"max_depth"`      // Operator nesting limit (0 = unlimited)
	StrictPadding bool `yaml:"strict_padding"` // Reject non-zero trailing bits
}

// Output holds presentation preferences.
type Output struct {
	Format string `yaml:"format"` // detailed, compact, tree or json
	Color  bool   `yaml:"color"`  // Styled output when stdout is a terminal
}

// Service holds options for the WebSocket decode service.
type Service struct {
	Host      string `yaml:"host"`               // Listen host (empty = all interfaces)
	Port      int    `yaml:"port"`               // Listen port
	Advertise bool   `yaml:"advertise"`          // Announce the service over mDNS
	Instance  string `yaml:"instance,omitempty"` // mDNS instance name (default: hostname)
	RateLimit int    `yaml:"rate_limit"`         // Requests per second per client (0 = unlimited)
	Burst     int    `yaml:"burst,omitempty"`    // Requests a client may send at once (default: rate_limit)
	TLS       bool   `yaml:"tls"`                // Serve wss:// (self-signed unless files are given)
	CertFile  string `yaml:"cert_file,omitempty"`
	KeyFile   string `yaml:"key_file,omitempty"`
}

// NewSettings creates Settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version: CurrentVersion,
		Decoder: &Decoder{
			MaxDepth:      packet.DefaultMaxDepth,
			StrictPadding: false,
		},
		Output: &Output{
			Format: FormatDetailed,
			Color:  true,
		},
		Service: &Service{
			Port:      8716,
			Advertise: true,
		},
	}
}

// applyDefaults fills sections missing from a loaded file.
func (s *Settings) applyDefaults() {
	defaults := NewSettings()
	if s.Decoder == nil {
		s.Decoder = defaults.Decoder
	}
	if s.Output == nil {
		s.Output = defaults.Output
	}
	if s.Output.Format == "" {
		s.Output.Format = defaults.Output.Format
	}
	if s.Service == nil {
		s.Service = defaults.Service
	}
	if s.Service.Port == 0 {
		s.Service.Port = defaults.Service.Port
	}
}

// Validate checks value ranges.
func (s *Settings) Validate() error {
	if s.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", s.Version, CurrentVersion)
	}
	if s.Decoder != nil && s.Decoder.MaxDepth < 0 {
		return fmt.Errorf("decoder.max_depth must not be negative, got %d", s.Decoder.MaxDepth)
	}
	if s.Output != nil && !ValidFormat(s.Output.Format) {
		return fmt.Errorf("unknown output.format %q (want detailed, compact, tree or json)", s.Output.Format)
	}
	if s.Service != nil && (s.Service.Port < 0 || s.Service.Port > 65535) {
		return fmt.Errorf("service.port out of range: %d", s.Service.Port)
	}
	if s.Service != nil && (s.Service.RateLimit < 0 || s.Service.Burst < 0) {
		return fmt.Errorf("service.rate_limit and service.burst must not be negative")
	}
	if s.Service != nil && (s.Service.CertFile == "") != (s.Service.KeyFile == "") {
		return fmt.Errorf("service.cert_file and service.key_file must be set together")
	}
	return nil
}

// ValidFormat reports whether f names a supported output format.
func ValidFormat(f string) bool {
	switch f {
	case FormatDetailed, FormatCompact, FormatTree, FormatJSON:
		return true
	default:
		return false
	}
}

// DecoderOptions converts the decoder section into parser options.
func (s *Settings) DecoderOptions() []packet.Option {
	if s.Decoder == nil {
		return nil
	}
	return []packet.Option{
		packet.WithMaxDepth(s.Decoder.MaxDepth),
		packet.WithStrictPadding(s.Decoder.StrictPadding),
	}
}
