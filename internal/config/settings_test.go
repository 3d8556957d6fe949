package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/muurk/pktdecode/internal/packet"
)

func TestGetConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG override only applies on Linux")
	}

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if want := filepath.Join(dir, "pktdecode"); configDir != want {
		t.Errorf("GetConfigDir() = %v, want %v", configDir, want)
	}

	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewSettings(t *testing.T) {
	s := NewSettings()

	if s.Version != CurrentVersion {
		t.Errorf("Version = %v, want %v", s.Version, CurrentVersion)
	}
	if s.Decoder.MaxDepth != packet.DefaultMaxDepth {
		t.Errorf("Decoder.MaxDepth = %v, want %v", s.Decoder.MaxDepth, packet.DefaultMaxDepth)
	}
	if s.Decoder.StrictPadding {
		t.Error("StrictPadding should default to false")
	}
	if s.Output.Format != FormatDetailed {
		t.Errorf("Output.Format = %q, want %q", s.Output.Format, FormatDetailed)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	s, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if s.Service.Port != NewSettings().Service.Port {
		t.Errorf("missing file should yield defaults, got port %d", s.Service.Port)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	s := NewSettings()
	s.Decoder.StrictPadding = true
	s.Decoder.MaxDepth = 12
	s.Output.Format = FormatJSON
	s.Service.Instance = "bench"

	if err := s.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.HasPrefix(string(data), "# pktdecode configuration file") {
		t.Error("saved file should start with the header comment")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should be removed after save")
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if !loaded.Decoder.StrictPadding || loaded.Decoder.MaxDepth != 12 {
		t.Errorf("decoder = %+v", loaded.Decoder)
	}
	if loaded.Output.Format != FormatJSON {
		t.Errorf("format = %q", loaded.Output.Format)
	}
	if loaded.Service.Instance != "bench" {
		t.Errorf("instance = %q", loaded.Service.Instance)
	}
}

func TestLoadFile_PartialFileGetsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "version: 1\ndecoder:\n  strict_padding: true\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	s, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if !s.Decoder.StrictPadding {
		t.Error("strict_padding should be read from the file")
	}
	if s.Output == nil || s.Output.Format != FormatDetailed {
		t.Error("missing output section should be defaulted")
	}
	if s.Service == nil || s.Service.Port == 0 {
		t.Error("missing service section should be defaulted")
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad yaml", content: "version: [1"},
		{name: "wrong version", content: "version: 2\n"},
		{name: "negative depth", content: "version: 1\ndecoder:\n  max_depth: -1\n"},
		{name: "unknown format", content: "version: 1\noutput:\n  format: xml\n"},
		{name: "port out of range", content: "version: 1\nservice:\n  port: 70000\n"},
		{name: "cert without key", content: "version: 1\nservice:\n  cert_file: cert.pem\n"},
		{name: "negative rate limit", content: "version: 1\nservice:\n  rate_limit: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFile(path); err == nil {
				t.Error("LoadFile() should fail")
			}
		})
	}
}

func TestDecoderOptions(t *testing.T) {
	s := NewSettings()
	s.Decoder.MaxDepth = 2
	s.Decoder.StrictPadding = true

	opts := packet.NewParser(s.DecoderOptions()...).Options()
	if opts.MaxDepth != 2 || !opts.StrictPadding {
		t.Errorf("parser options = %+v", opts)
	}

	if _, err := packet.Decode("8A004A801A8002F478", s.DecoderOptions()...); !packet.IsType(err, packet.ErrTypeDepthExceeded) {
		t.Errorf("Decode() error = %v, want depth exceeded", err)
	}
}
