package server

import (
	"net/http"
	"strings"
)

// ContentSecurityPolicy allows the widget's own script, style and the
// blob: URLs used to play synthesized speech; nothing else.
const ContentSecurityPolicy = "default-src 'none'; script-src 'self'; style-src 'self'; " +
	"connect-src 'self'; media-src 'self' blob:; frame-ancestors 'none'; base-uri 'none'; form-action 'none'"

// SecurityConfig controls security headers, CORS and request size.
type SecurityConfig struct {
	// EnableCORS adds CORS headers for allowed origins.
	EnableCORS bool
	// AllowedOrigins lists accepted origins; "*" accepts any.
	AllowedOrigins []string
	// AllowedMethods is advertised in preflight responses.
	AllowedMethods []string
	// MaxBodyBytes bounds JSON request bodies.
	MaxBodyBytes int64
}

// DefaultSecurityConfig returns permissive CORS with a 16 KiB body limit.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		EnableCORS:     true,
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		MaxBodyBytes:   16 << 10,
	}
}

// SecurityMiddleware sets security headers, applies CORS and answers
// preflight requests with 204 without calling next.
func SecurityMiddleware(config SecurityConfig, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", ContentSecurityPolicy)

		if config.EnableCORS {
			if origin, ok := allowedOrigin(config.AllowedOrigins, r.Header.Get("Origin")); ok {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", strings.Join(config.AllowedMethods, ", "))
				h.Set("Access-Control-Allow-Headers", "Content-Type")
				h.Set("Access-Control-Max-Age", "86400")
				if origin != "*" {
					h.Add("Vary", "Origin")
					h.Set("Access-Control-Allow-Credentials", "true")
				}
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

// allowedOrigin returns the value for Access-Control-Allow-Origin. A
// wildcard entry always matches; otherwise the request origin must be listed.
func allowedOrigin(allowed []string, origin string) (string, bool) {
	for _, a := range allowed {
		if a == "*" {
			return "*", true
		}
		if origin != "" && a == origin {
			return origin, true
		}
	}
	return "", false
}
