package client

import (
	"log/slog"
	"net/http"
	"time"
)

// SlowRequestThreshold is the duration above which requests are logged at WARN level.
const SlowRequestThreshold = 5 * time.Second

// loggingTransport logs every round trip with timing.
type loggingTransport struct {
	next   http.RoundTripper
	logger *slog.Logger
}

// NewLoggingTransport wraps next so that all requests are logged.
// Failed requests are logged at ERROR, slow ones at WARN and the rest at DEBUG.
func NewLoggingTransport(next http.RoundTripper, logger *slog.Logger) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &loggingTransport{next: next, logger: logger}
}

// RoundTrip implements http.RoundTripper.
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := t.next.RoundTrip(req)

	duration := time.Since(start)

	attrs := []any{
		"method", req.Method,
		"path", req.URL.Path,
		"duration_ms", duration.Milliseconds(),
	}

	switch {
	case err != nil:
		attrs = append(attrs, "error", err.Error())
		t.logger.Error("request failed", attrs...)
	case resp.StatusCode >= 400:
		attrs = append(attrs, "status", resp.StatusCode)
		t.logger.Error("request failed", attrs...)
	case duration > SlowRequestThreshold:
		attrs = append(attrs, "status", resp.StatusCode)
		t.logger.Warn("slow request", attrs...)
	default:
		attrs = append(attrs, "status", resp.StatusCode)
		t.logger.Debug("request completed", attrs...)
	}

	return resp, err
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
