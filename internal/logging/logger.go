package logging

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent (no zap output).
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "PKTDECODE_LOG_LEVEL"

// maxLoggedInput caps how much of an input or bit string goes into a log line.
const maxLoggedInput = 256

// Initialize creates a new logger with the specified level.
// If level is empty, it checks PKTDECODE_LOG_LEVEL environment variable.
// If neither is set, logging is disabled (silent mode).
//
// Logs go to stderr so command output on stdout stays machine-readable.
func Initialize(level string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}

	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(ParseLevel(level)),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	return nil
}

// InitializeFromEnv initializes the logger from the PKTDECODE_LOG_LEVEL
// environment variable.
func InitializeFromEnv() error {
	return Initialize("")
}

// ParseLevel maps a level name to a zap level. Unknown names map to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// SetLogger replaces the global logger. Tests use it with zaptest/observer.
func SetLogger(l *zap.Logger) {
	logger = l
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if logger == nil {
		// Silent until initialized
		logger = zap.NewNop()
	}
	return logger
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// LogConnection logs a connection event
func LogConnection(remoteAddr string, event string) {
	Info("Connection event",
		zap.String("remote_addr", remoteAddr),
		zap.String("event", event),
	)
}

// LogDecode logs the outcome of decoding one transmission
func LogDecode(source string, input string, packets int, bits int, elapsed time.Duration, err error) {
	fields := []zap.Field{
		zap.String("source", source),
		zap.Int("hex_digits", len(input)),
		zap.Int("bits", bits),
		zap.Int("top_level_packets", packets),
		zap.Duration("elapsed", elapsed),
	}

	if err != nil {
		fields = append(fields,
			zap.Error(err),
			zap.String("input", Truncate(input)),
		)
		Warn("Decode failed", fields...)
		return
	}

	Debug("Decode complete", fields...)
}

// LogRequest logs a decode request served over the network
func LogRequest(remoteAddr string, input string, ok bool, elapsed time.Duration) {
	Info("Decode request",
		zap.String("remote_addr", remoteAddr),
		zap.Int("hex_digits", len(input)),
		zap.Bool("ok", ok),
		zap.Duration("elapsed", elapsed),
	)
}

// LogBits logs a bit string (useful for debugging framing problems)
func LogBits(label string, bits string) {
	Debug(label,
		zap.Int("length", len(bits)),
		zap.String("bits", Truncate(bits)),
	)
}

// Truncate shortens s for logging.
func Truncate(s string) string {
	if len(s) > maxLoggedInput {
		return s[:maxLoggedInput] + "..."
	}
	return s
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
