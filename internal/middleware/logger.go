package middleware

import (
	"net/http"
	"time"

	"github.com/andresuchdata/dog-uploader/pkg/logger"
)

// LoggingTransport logs every outgoing request with its status and latency.
type LoggingTransport struct {
	Base http.RoundTripper
	// Service names the remote API in log lines, e.g. "dog-api".
	Service string
}

// Logger wraps base (http.DefaultTransport when nil) in a LoggingTransport.
func Logger(service string, base http.RoundTripper) *LoggingTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &LoggingTransport{Base: base, Service: service}
}

// Client returns an *http.Client that sends requests through a LoggingTransport.
func Client(service string, base http.RoundTripper) *http.Client {
	return &http.Client{Transport: Logger(service, base)}
}

// RoundTrip implements http.RoundTripper.
func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	path := req.URL.Path
	if raw := req.URL.RawQuery; raw != "" {
		path = path + "?" + raw
	}

	res, err := t.Base.RoundTrip(req)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("service", t.Service).
			Str("method", req.Method).
			Str("host", req.URL.Host).
			Str("path", path).
			Dur("latency", time.Since(start)).
			Msg("Request failed")
		return nil, err
	}

	logger.Log.Debug().
		Str("service", t.Service).
		Str("method", req.Method).
		Str("host", req.URL.Host).
		Str("path", path).
		Int("status", res.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("Request processed")

	return res, nil
}
