package logging

import (
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

// EnvVar selects the log level at startup.
const EnvVar = "ALGORAND_MCP_DEBUG"

var (
	logLevel = new(slog.LevelVar)
	logger   atomic.Pointer[slog.Logger]
)

func init() {
	logLevel.Set(parseLogLevel(os.Getenv(EnvVar)))
	// stdout carries the MCP stdio transport, so logs always go to stderr.
	SetOutput(os.Stderr)
}

// Logger returns the global logger instance.
func Logger() *slog.Logger {
	return logger.Load()
}

// Component returns the global logger tagged with a component name.
func Component(name string) *slog.Logger {
	return Logger().With("component", name)
}

// SetLogLevel sets the global log level for the entire server.
func SetLogLevel(level slog.Level) {
	logLevel.Set(level)
}

// SetOutput redirects log output, keeping the current level.
func SetOutput(w io.Writer) {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	logger.Store(slog.New(handler))
}

// ParseLevel converts ALGORAND_MCP_DEBUG style values to slog levels.
func ParseLevel(val string) slog.Level {
	return parseLogLevel(val)
}

// parseLogLevel converts ALGORAND_MCP_DEBUG environment variable values to slog levels.
// Mapping: 0=Error, 1=Warn, 2=Info, 3=Debug
// Default: Warn if not set or invalid
func parseLogLevel(envVal string) slog.Level {
	switch envVal {
	case "0":
		return slog.LevelError
	case "1":
		return slog.LevelWarn
	case "2":
		return slog.LevelInfo
	case "3":
		return slog.LevelDebug
	default:
		return slog.LevelWarn
	}
}
