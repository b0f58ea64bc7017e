package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

var (
	logLevel  atomic.Int32
	slogLevel = new(slog.LevelVar)
	logger    atomic.Pointer[slog.Logger]
)

func init() {
	SetLogOutput(os.Stderr)
	SetLogLevel(LogLevelInfo)
}

// SetLogOutput redirects log output. Logs never go to stdout because the MCP
// stdio transport owns it.
func SetLogOutput(w io.Writer) {
	logger.Store(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slogLevel})))
}

// Logger returns the shared structured logger
func Logger() *slog.Logger {
	return logger.Load()
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	logLevel.Store(int32(level))
	switch level {
	case LogLevelError:
		slogLevel.Set(slog.LevelError)
	case LogLevelWarn:
		slogLevel.Set(slog.LevelWarn)
	case LogLevelDebug:
		slogLevel.Set(slog.LevelDebug)
	default:
		slogLevel.Set(slog.LevelInfo)
	}
}

// ParseLogLevel maps a level name to a LogLevel
func ParseLogLevel(name string) (LogLevel, error) {
	switch name {
	case "error":
		return LogLevelError, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "", "info":
		return LogLevelInfo, nil
	case "debug":
		return LogLevelDebug, nil
	default:
		return LogLevelInfo, fmt.Errorf("unknown log level: %s", name)
	}
}

// SetVerbose enables verbose (debug) logging
func SetVerbose(verbose bool) {
	if verbose {
		SetLogLevel(LogLevelDebug)
	} else {
		SetLogLevel(LogLevelInfo)
	}
}

func logf(level LogLevel, slevel slog.Level, format string, args ...interface{}) {
	if LogLevel(logLevel.Load()) < level {
		return
	}
	Logger().Log(context.Background(), slevel, fmt.Sprintf(format, args...))
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	logf(LogLevelError, slog.LevelError, format, args...)
}

// LogWarn logs a warning message
func LogWarn(format string, args ...interface{}) {
	logf(LogLevelWarn, slog.LevelWarn, format, args...)
}

// LogInfo logs an info message
func LogInfo(format string, args ...interface{}) {
	logf(LogLevelInfo, slog.LevelInfo, format, args...)
}

// LogDebug logs a debug message
func LogDebug(format string, args ...interface{}) {
	logf(LogLevelDebug, slog.LevelDebug, format, args...)
}
