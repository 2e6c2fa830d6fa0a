package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/TheNeikos/neikos.moe/internal/pkg/logger"
)

func TestLoggerEmitsRequestLog(t *testing.T) {
	var buf bytes.Buffer
	orig := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = orig }()

	h := RequestID(Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodGet, "/images/1?width=200", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	out := buf.String()
	for _, want := range []string{`"status":418`, `"request_id":"req-42"`, `"path":"/images/1"`, `"query":"width=200"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log to contain %s, got %s", want, out)
		}
	}
}

func TestLoggerAttachesContextLogger(t *testing.T) {
	var buf bytes.Buffer
	orig := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = orig }()

	h := RequestID(Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Error().Msg("handler event")
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest(http.MethodGet, "/images/1", nil)
	req.Header.Set("X-Request-ID", "req-7")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	out := buf.String()
	if !strings.Contains(out, "handler event") {
		t.Fatalf("expected handler event in log, got %s", out)
	}
	if !strings.Contains(out, `"request_id":"req-7"`) {
		t.Errorf("expected handler event tagged with request ID, got %s", out)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name     string
		forward  string
		realIP   string
		remote   string
		expected string
	}{
		{"x-forwarded-for single", "203.0.113.9", "", "10.0.0.1:1234", "203.0.113.9"},
		{"x-forwarded-for chain", "203.0.113.9,10.0.0.2", "", "10.0.0.1:1234", "203.0.113.9"},
		{"x-real-ip", "", "203.0.113.7", "10.0.0.1:1234", "203.0.113.7"},
		{"remote addr fallback", "", "", "10.0.0.1:1234", "10.0.0.1:1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.forward != "" {
				req.Header.Set("X-Forwarded-For", tt.forward)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := getClientIP(req); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
