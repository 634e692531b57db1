package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func newTestRouter(t *testing.T, opts Options) (chi.Router, *Server) {
	t.Helper()
	s, err := NewServer(nil, opts)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	r := chi.NewRouter()
	s.RegisterRoutes(r)
	return r, s
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewServer_Defaults(t *testing.T) {
	t.Parallel()

	_, s := newTestRouter(t, Options{})
	if s.opts.PollInterval != 2*time.Second {
		t.Errorf("PollInterval = %v, want 2s", s.opts.PollInterval)
	}
	if s.opts.QueryPath != "/query" || s.opts.ConfirmPath != "/confirm" {
		t.Errorf("paths = %q, %q", s.opts.QueryPath, s.opts.ConfirmPath)
	}
	if len(s.cssVer) != 16 || len(s.jsVer) != 16 {
		t.Errorf("asset versions = %q, %q; want 16 hex chars", s.cssVer, s.jsVer)
	}
}

func TestHandleIndex(t *testing.T) {
	t.Parallel()

	r, s := newTestRouter(t, Options{PollInterval: 5 * time.Second, QueryPath: "/api/data"})
	rec := get(r, "/")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"Nurse Interface",
		`data-poll-ms="5000"`,
		`data-query-path="/api/data"`,
		`data-confirm-path="/confirm"`,
		"No patients yet!",
		"/static/app.js?v=" + s.jsVer,
		"/static/style.css?v=" + s.cssVer,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("index body missing %q", want)
		}
	}
	if strings.Contains(body, "<script>") {
		t.Error("index must not carry inline scripts")
	}
}

func TestStaticAssets(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t, Options{})

	tests := []struct {
		path     string
		wantCode int
		wantType string
		contains string
	}{
		{"/static/app.js", http.StatusOK, "javascript", "Failed to confirm. Please try again."},
		{"/static/style.css", http.StatusOK, "text/css", "tr.confirmed"},
		{"/static/missing.js", http.StatusNotFound, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(r, tt.path)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantType != "" && !strings.Contains(rec.Header().Get("Content-Type"), tt.wantType) {
				t.Errorf("Content-Type = %q, want %q", rec.Header().Get("Content-Type"), tt.wantType)
			}
			if tt.contains != "" && !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("body missing %q", tt.contains)
			}
		})
	}
}

func TestHandleIndex_PostNotAllowed(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t, Options{})
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestAppScript_ConfirmFlow(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t, Options{})
	js := get(r, "/static/app.js").Body.String()

	for _, want := range []string{
		`body.dataset.confirmPath || '/confirm'`,
		`var TRIAGE_FIELD = 'triage level';`,
		`payload[TRIAGE_FIELD] = state.overrides[i];`,
		`if (state.busy || state.confirmed[i] || state.cleared[i]) return;`,
		`if (!window.confirm(CLEAR_PROMPT)) return;`,
		`if (snapshot === lastSnapshot) return;`,
		`/\b([1-5])\b/`,
	} {
		if !strings.Contains(js, want) {
			t.Errorf("app.js missing %q", want)
		}
	}
	// triage text is matched as received, like the server-side normalizer
	if strings.Contains(js, "normalize('NFKC')") {
		t.Error("app.js must not fold triage text")
	}
}
