package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// serveSecured runs one request through SecurityMiddleware and reports
// whether the wrapped handler was reached.
func serveSecured(cfg SecurityConfig, method, origin string) (*httptest.ResponseRecorder, bool) {
	reached := false
	h := SecurityMiddleware(cfg, func(w http.ResponseWriter, _ *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(method, "/api/calculate", http.NoBody)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec, reached
}

func TestDefaultSecurityConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultSecurityConfig()
	if !cfg.EnableCORS {
		t.Error("CORS should be enabled by default")
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins = %v, want [*]", cfg.AllowedOrigins)
	}
	if got := strings.Join(cfg.AllowedMethods, ","); got != "GET,POST,OPTIONS" {
		t.Errorf("AllowedMethods = %s", got)
	}
	if cfg.MaxBodyBytes != 16<<10 {
		t.Errorf("MaxBodyBytes = %d, want 16 KiB", cfg.MaxBodyBytes)
	}
}

func TestSecurityMiddlewareHeaders(t *testing.T) {
	t.Parallel()
	rec, reached := serveSecured(SecurityConfig{}, http.MethodPost, "")
	if !reached {
		t.Fatal("handler not called")
	}
	want := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "strict-origin-when-cross-origin",
		"Content-Security-Policy": ContentSecurityPolicy,
	}
	for k, v := range want {
		if got := rec.Header().Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}

func TestContentSecurityPolicyAllowsWidget(t *testing.T) {
	t.Parallel()
	for _, directive := range []string{"script-src 'self'", "connect-src 'self'", "media-src 'self' blob:", "frame-ancestors 'none'"} {
		if !strings.Contains(ContentSecurityPolicy, directive) {
			t.Errorf("CSP lacks %q", directive)
		}
	}
	if strings.Contains(ContentSecurityPolicy, "unsafe-inline") {
		t.Error("CSP must not allow inline scripts")
	}
}

func TestSecurityMiddlewareCORS(t *testing.T) {
	t.Parallel()
	classroom := "https://classroom.example"
	tests := []struct {
		name       string
		cors       bool
		origins    []string
		origin     string
		wantOrigin string
		wantVary   bool
	}{
		{"disabled", false, []string{"*"}, classroom, "", false},
		{"wildcard", true, []string{"*"}, classroom, "*", false},
		{"wildcard without origin", true, []string{"*"}, "", "*", false},
		{"listed origin", true, []string{"https://a.example", classroom}, classroom, classroom, true},
		{"unlisted origin", true, []string{"https://a.example"}, classroom, "", false},
		{"no origin header", true, []string{classroom}, "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := SecurityConfig{EnableCORS: tt.cors, AllowedOrigins: tt.origins, AllowedMethods: []string{"GET", "POST"}}
			rec, _ := serveSecured(cfg, http.MethodPost, tt.origin)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if tt.wantOrigin != "" && rec.Header().Get("Access-Control-Allow-Methods") != "GET, POST" {
				t.Errorf("Allow-Methods = %q", rec.Header().Get("Access-Control-Allow-Methods"))
			}
			vary := rec.Header().Get("Vary") == "Origin"
			if vary != tt.wantVary {
				t.Errorf("Vary: Origin = %v, want %v", vary, tt.wantVary)
			}
			credentials := rec.Header().Get("Access-Control-Allow-Credentials") == "true"
			if credentials != tt.wantVary {
				t.Errorf("Allow-Credentials = %v, want %v", credentials, tt.wantVary)
			}
		})
	}
}

func TestSecurityMiddlewarePreflight(t *testing.T) {
	t.Parallel()
	rec, reached := serveSecured(DefaultSecurityConfig(), http.MethodOptions, "https://classroom.example")
	if reached {
		t.Error("preflight reached the handler")
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Headers") != "Content-Type" {
		t.Errorf("Allow-Headers = %q", rec.Header().Get("Access-Control-Allow-Headers"))
	}
}

func TestSecurityMiddlewarePassesOtherMethods(t *testing.T) {
	t.Parallel()
	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		rec, reached := serveSecured(DefaultSecurityConfig(), method, "")
		if !reached || rec.Code != http.StatusOK {
			t.Errorf("%s: reached=%v status=%d", method, reached, rec.Code)
		}
	}
}
