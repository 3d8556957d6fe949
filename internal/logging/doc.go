// Package logging provides structured logging for pktdecode.
//
// It wraps a package-global zap logger. Logging is silent until Initialize is
// given a level, either from the --log-level flag or from the
// PKTDECODE_LOG_LEVEL environment variable. Output goes to stderr in console
// format so decoded results on stdout stay machine-readable.
//
// # Log Levels
//
//   - Debug: per-decode timings, bit strings, failed requests
//   - Info: service lifecycle, connections, served requests
//   - Warn: recoverable problems (mDNS registration, write failures)
//   - Error: failures that end a command
//
// # Specialized Logging
//
//	logging.LogDecode("stdin", hex, packets, bits, elapsed, err)
//	logging.LogConnection(remoteAddr, "websocket_upgraded")
//	logging.LogRequest(remoteAddr, hex, ok, elapsed)
//	logging.LogBits("operator payload", bits)
//
// Inputs are truncated before they reach a log line.
//
// The decoding packages (bitstream, packet) never log; callers log around them.
package logging
