package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Service is a decode service discovered on the local network
type Service struct {
	// Instance is the advertised instance name (e.g., "bench-1")
	Instance string

	// Hostname is the mDNS hostname (e.g., "bench-1.local.")
	Hostname string

	// IP is the service address, IPv4 preferred
	IP string

	// Port is the WebSocket listen port
	Port int

	// Path is the WebSocket endpoint path from the TXT record
	Path string

	// Version is the build version of the serving binary
	Version string

	// Secure is set when the service speaks wss://
	Secure bool

	// Metadata contains every TXT record, including path and version
	Metadata map[string]string

	// DiscoveredAt is when the service answered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the service
func (s *Service) String() string {
	return fmt.Sprintf("%s (%s) at %s", s.Instance, s.Hostname, net.JoinHostPort(s.IP, strconv.Itoa(s.Port)))
}

// URL returns the WebSocket URL of the decode endpoint
func (s *Service) URL() string {
	path := s.Path
	if path == "" {
		path = DefaultPath
	}
	scheme := "ws://"
	if s.Secure {
		scheme = "wss://"
	}
	return scheme + net.JoinHostPort(s.IP, strconv.Itoa(s.Port)) + path
}

// GetMetadata retrieves a TXT value by key, or returns empty string if not found
func (s *Service) GetMetadata(key string) string {
	if s.Metadata == nil {
		return ""
	}
	return s.Metadata[key]
}
