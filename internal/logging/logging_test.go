package logging

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"nonsense", zerolog.InfoLevel},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			if got := ParseLevel(tc.input); got != tc.want {
				t.Errorf("Expected %v, but got %v", tc.want, got)
			}
		})
	}
}

func TestMiddlewareLogsRequest(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf})
	t.Cleanup(func() { Init(Config{Level: "disabled"}) })

	h := chimiddleware.RequestID(Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("Invalid Due Date"))
	})))

	req := httptest.NewRequest(http.MethodGet, "/agenda/?date=2024-13-01", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	line := strings.TrimSpace(buf.String())
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("Expected a JSON log line, but got %q: %v", line, err)
	}
	if entry["status"] != float64(http.StatusBadRequest) {
		t.Errorf("Expected status 400 in log, but got %v", entry["status"])
	}
	if entry["path"] != "/agenda/" {
		t.Errorf("Expected path /agenda/ in log, but got %v", entry["path"])
	}
	if entry["bytes"] != float64(len("Invalid Due Date")) {
		t.Errorf("Expected bytes %d in log, but got %v", len("Invalid Due Date"), entry["bytes"])
	}
	if id, _ := entry["request_id"].(string); id == "" {
		t.Error("Expected a request_id in log")
	}
}
