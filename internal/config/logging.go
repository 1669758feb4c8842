package config

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// SetupLogger creates a logger writing JSON to logFile and, when console is
// non-nil, text to console as well. The terminal UI passes a nil console so
// log lines never land on the screen.
// Returns the logger and a cleanup function to close the file.
func SetupLogger(logFile string, level slog.Level, console io.Writer) (*slog.Logger, func() error) {
	opts := &slog.HandlerOptions{Level: level}

	var handlers []slog.Handler
	if console != nil {
		// Console handler (text for readability)
		handlers = append(handlers, slog.NewTextHandler(console, opts))
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		if len(handlers) == 0 {
			return slog.New(slog.DiscardHandler), func() error { return nil }
		}
		logger := slog.New(handlers[0])
		logger.Error("failed to open log file, using console only", "error", err, "file", logFile)
		return logger, func() error { return nil }
	}

	// File handler (JSON for machine parsing)
	handlers = append(handlers, slog.NewJSONHandler(file, opts))

	logger := slog.New(slogmulti.Fanout(handlers...))

	cleanup := func() error {
		return file.Close()
	}

	return logger, cleanup
}

// SetupLoggerWithWriters creates a logger with custom writers (for testing).
func SetupLoggerWithWriters(console, file io.Writer, level slog.Level) *slog.Logger {
	consoleHandler := slog.NewTextHandler(console, &slog.HandlerOptions{Level: level})
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return slog.New(slogmulti.Fanout(consoleHandler, fileHandler))
}
