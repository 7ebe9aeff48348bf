package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// logLines decodes every JSON log line written to buf.
func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func testRouter(log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logRequests(log))
	r.Group(func(r chi.Router) {
		r.Use(requireAPIKey("k", log))
		r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"id": chi.URLParam(r, "id")})
		})
		r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
			jsonError(w, "boom", http.StatusInternalServerError)
		})
	})
	return r
}

func TestRequireAPIKey(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantError  string
	}{
		{"valid", "Bearer k", http.StatusOK, ""},
		{"missing", "", http.StatusUnauthorized, "missing authorization"},
		{"empty token", "Bearer ", http.StatusUnauthorized, "missing authorization"},
		{"wrong scheme", "Basic k", http.StatusUnauthorized, "missing authorization"},
		{"wrong key", "Bearer nope", http.StatusUnauthorized, "invalid api key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			srv := testRouter(slog.New(slog.NewJSONHandler(&buf, nil)))

			req := httptest.NewRequest(http.MethodGet, "/items/42", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantError == "" {
				return
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("content type: %q", ct)
			}
			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body["error"] != tt.wantError {
				t.Errorf("body: %v (%v)", body, err)
			}

			lines := logLines(t, &buf)
			var rejected map[string]any
			for _, l := range lines {
				if l["msg"] == "request rejected" {
					rejected = l
				}
			}
			if rejected == nil {
				t.Fatalf("no rejection logged: %v", lines)
			}
			if rejected["reason"] != tt.wantError || rejected["path"] != "/items/42" || rejected["request_id"] == "" {
				t.Errorf("rejection log: %v", rejected)
			}
		})
	}
}

func TestLogRequests_RoutePatternAndStatus(t *testing.T) {
	var buf bytes.Buffer
	srv := testRouter(slog.New(slog.NewJSONHandler(&buf, nil)))

	for _, path := range []string{"/items/7", "/boom"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer k")
		srv.ServeHTTP(httptest.NewRecorder(), req)
	}

	lines := logLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("expected 2 request lines, got %v", lines)
	}
	first, second := lines[0], lines[1]
	if first["route"] != "/items/{id}" || first["status"] != float64(200) || first["level"] != "INFO" {
		t.Errorf("first: %v", first)
	}
	if n, _ := first["bytes"].(float64); n == 0 {
		t.Errorf("expected bytes written, got %v", first["bytes"])
	}
	if id, _ := first["request_id"].(string); id == "" {
		t.Errorf("missing request id: %v", first)
	}
	if second["route"] != "/boom" || second["status"] != float64(500) || second["level"] != "ERROR" {
		t.Errorf("second: %v", second)
	}
}
