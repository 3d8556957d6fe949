package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/pktdecode/internal/config"
	"github.com/muurk/pktdecode/internal/packet"
	"github.com/muurk/pktdecode/internal/service"
)

// run executes the CLI against a throwaway settings file
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	return runWithConfig(t, filepath.Join(t.TempDir(), "config.yaml"), stdin, args...)
}

func runWithConfig(t *testing.T, configPath, stdin string, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", configPath}, args...))

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

const exampleHex = "9C0141080250320F1802104A08"

func TestSolve(t *testing.T) {
	out, _, err := run(t, "", "solve", exampleHex)
	require.NoError(t, err)
	assert.Equal(t, "version sum: 20\nvalue:       1\n", out)

	out, _, err = run(t, "", "solve", exampleHex, "--format", "compact")
	require.NoError(t, err)
	assert.Equal(t, "20 1\n", out)
}

func TestSolve_JSON(t *testing.T) {
	out, _, err := run(t, "", "solve", exampleHex, "--format", "json")
	require.NoError(t, err)

	var got struct {
		VersionSum uint64           `json:"version_sum"`
		Value      uint64           `json:"value"`
		Expression string           `json:"expression"`
		Bits       int              `json:"bits"`
		Padding    int              `json:"padding"`
		Packets    []map[string]any `json:"packets"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, uint64(20), got.VersionSum)
	assert.Equal(t, uint64(1), got.Value)
	assert.Equal(t, "(eq (sum 1 3) (product 2 2))", got.Expression)
	assert.Equal(t, 104, got.Bits)
	assert.Equal(t, 2, got.Padding)
	require.Len(t, got.Packets, 1)
	assert.Equal(t, "eq", got.Packets[0]["operator"])
}

func TestSum_Stdin(t *testing.T) {
	out, _, err := run(t, "8A004A801A8002F478\n", "sum")
	require.NoError(t, err)
	assert.Equal(t, "16\n", out)

	out, _, err = run(t, "620080001611562C8802118E34", "sum", "-")
	require.NoError(t, err)
	assert.Equal(t, "12\n", out)
}

func TestEval(t *testing.T) {
	out, _, err := run(t, "", "eval", "C200B40A82")
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)

	out, _, err = run(t, "", "eval", "9C005AC2F8F0", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"value": 0}`, out)
}

func TestDecode_Formats(t *testing.T) {
	out, _, err := run(t, "", "decode", "70F624", "--format", "compact")
	require.NoError(t, err)
	assert.Equal(t, "7\n9\n", out)

	out, _, err = run(t, "", "decode", "D2FE28", "--format", "tree")
	require.NoError(t, err)
	assert.Equal(t, "literal v6 = 2021  [bits 0+21]\n", out)

	out, _, err = run(t, "", "decode", "70F624")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "2 top-level packet(s), 24 bits (2 padding)\n\n"), out)

	out, _, err = run(t, "", "decode", "D2FE28", "--format", "json")
	require.NoError(t, err)
	var tree []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &tree))
	require.Len(t, tree, 1)
	assert.Equal(t, float64(2021), tree[0]["value"])
}

func TestDecode_Errors(t *testing.T) {
	_, _, err := run(t, "", "decode", "ZZ")
	assert.True(t, packet.IsType(err, packet.ErrTypeMalformedHex), "got %v", err)

	_, _, err = run(t, "", "solve", "70F624")
	assert.True(t, packet.IsType(err, packet.ErrTypeTopLevel), "got %v", err)

	_, _, err = run(t, "", "eval", "1600C40881102")
	assert.True(t, packet.IsType(err, packet.ErrTypeArity), "got %v", err)
}

func TestDecoderFlags(t *testing.T) {
	_, _, err := run(t, "", "solve", "D2FE2F")
	assert.NoError(t, err)

	_, _, err = run(t, "", "solve", "D2FE2F", "--strict-padding")
	assert.True(t, packet.IsType(err, packet.ErrTypePadding), "got %v", err)

	_, _, err = run(t, "", "solve", exampleHex, "--max-depth", "1")
	assert.True(t, packet.IsType(err, packet.ErrTypeDepthExceeded), "got %v", err)

	_, _, err = run(t, "", "solve", exampleHex, "--format", "yaml")
	assert.Error(t, err)
}

func TestDeepNestingDefaults(t *testing.T) {
	// 300 count-framed sums of one child each around a literal 1
	bits := strings.Repeat("000"+"000"+"1"+"00000000001", 300) + "000" + "100" + "00001"
	bits += strings.Repeat("0", (4-len(bits)%4)%4)
	var hex strings.Builder
	for i := 0; i < len(bits); i += 4 {
		n, err := strconv.ParseUint(bits[i:i+4], 2, 8)
		require.NoError(t, err)
		fmt.Fprintf(&hex, "%X", n)
	}

	out, _, err := run(t, "", "solve", hex.String(), "--format", "compact")
	require.NoError(t, err)
	assert.Equal(t, "0 1\n", out)

	_, _, err = run(t, "", "solve", hex.String(), "--max-depth", "100")
	assert.True(t, packet.IsType(err, packet.ErrTypeDepthExceeded), "got %v", err)
}

func TestFileInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte("C200B40A82\n"), 0600))

	out, _, err := run(t, "", "eval", "--file", path)
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)

	_, _, err = run(t, "", "eval", "--file", path, "D2FE28")
	assert.Error(t, err)

	_, _, err = run(t, "", "eval", "--file", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestReadInput(t *testing.T) {
	in, err := readInput([]string{"d2fe28"}, "", strings.NewReader("ignored"))
	require.NoError(t, err)
	assert.Equal(t, input{text: "d2fe28", source: "argument"}, in)

	in, err = readInput(nil, "", strings.NewReader("  D2FE28\r\n"))
	require.NoError(t, err)
	assert.Equal(t, input{text: "D2FE28", source: "stdin"}, in)

	_, err = readInput(nil, "", strings.NewReader(" \n"))
	assert.Error(t, err)
}

func TestSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\noutput:\n  format: compact\n"), 0600))

	out, _, err := runWithConfig(t, path, "", "solve", exampleHex)
	require.NoError(t, err)
	assert.Equal(t, "20 1\n", out)

	// Flags win over the file
	out, _, err = runWithConfig(t, path, "", "solve", exampleHex, "--format", "detailed")
	require.NoError(t, err)
	assert.Equal(t, "version sum: 20\nvalue:       1\n", out)
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	out, _, err := runWithConfig(t, path, "", "config", "path")
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)

	_, _, err = runWithConfig(t, path, "", "config", "init")
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, _, err = runWithConfig(t, path, "", "config", "init")
	assert.Error(t, err)

	_, _, err = runWithConfig(t, path, "", "config", "init", "--force")
	assert.NoError(t, err)

	out, _, err = runWithConfig(t, path, "", "config", "show", "--strict-padding")
	require.NoError(t, err)
	assert.Contains(t, out, "strict_padding: true")
	assert.Contains(t, out, "port: 8716")
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "pktdecode "), out)

	out, _, err = run(t, "", "version", "--format", "json")
	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.NotEmpty(t, info["version"])
	assert.NotEmpty(t, info["go_version"])
}

func TestRemote(t *testing.T) {
	ts := httptest.NewServer(service.New(&service.Config{}).Handler())
	defer ts.Close()
	addr := "ws" + strings.TrimPrefix(ts.URL, "http") + "/decode"

	out, _, err := run(t, "", "remote", "--addr", addr, exampleHex)
	require.NoError(t, err)
	assert.Equal(t, "version sum: 20\nvalue:       1\n", out)

	out, _, err = run(t, "", "remote", "--addr", addr, "--format", "compact", "04005AC33890")
	require.NoError(t, err)
	assert.Equal(t, "8 54\n", out)

	_, _, err = run(t, "", "remote", "--addr", addr, "XYZ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed_hex")

	out, _, err = run(t, "", "remote", "--addr", addr, "--format", "json", "XYZ")
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, out, `"error_type": "malformed_hex"`)
}

func TestInspectNeedsTerminal(t *testing.T) {
	_, _, err := run(t, "", "inspect", exampleHex)
	assert.Error(t, err)
}

func TestServiceConfig(t *testing.T) {
	s := config.NewSettings()
	s.Service.Host = "127.0.0.1"
	s.Decoder.StrictPadding = true

	cfg, err := serviceConfig(s)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 8716, cfg.Port)
	assert.True(t, cfg.Advertise)
	assert.Nil(t, cfg.TLS)
	assert.Len(t, cfg.Options, 2)
	assert.Zero(t, cfg.RateLimit)

	s.Service.RateLimit, s.Service.Burst = 20, 40
	cfg, err = serviceConfig(s)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.RateLimit)
	assert.Equal(t, 40, cfg.Burst)

	s.Service.TLS = true
	cfg, err = serviceConfig(s)
	require.NoError(t, err)
	require.NotNil(t, cfg.TLS)
	assert.Len(t, cfg.TLS.Certificates, 1)

	s.Service.CertFile = filepath.Join(t.TempDir(), "missing.pem")
	s.Service.KeyFile = filepath.Join(t.TempDir(), "missing-key.pem")
	_, err = serviceConfig(s)
	assert.Error(t, err)
}
