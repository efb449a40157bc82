package server

import (
	"net/http"
	"time"

	"github.com/rs/cors"
)

// SecurityConfig bounds what a client may ask of the server.
type SecurityConfig struct {
	EnableCORS     bool
	AllowedOrigins []string
	AllowedMethods []string
	// MaxIterations caps the trajectories per portfolio of one request.
	MaxIterations int
	// MaxHorizonYears caps the years of one trajectory.
	MaxHorizonYears int
	// MaxPortfolios caps the portfolios of one request.
	MaxPortfolios int
	// MaxBudget caps the time budget of one request.
	MaxBudget time.Duration
	// MaxBodyBytes caps the request body.
	MaxBodyBytes int64
}

// DefaultSecurityConfig returns the limits used by --serve.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		EnableCORS:      true,
		AllowedOrigins:  []string{"*"},
		AllowedMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		MaxIterations:   1_000_000,
		MaxHorizonYears: 1_000,
		MaxPortfolios:   32,
		MaxBudget:       30 * time.Second,
		MaxBodyBytes:    1 << 20,
	}
}

// securityHeaders are set on every response.
var securityHeaders = map[string]string{
	"X-Content-Type-Options":  "nosniff",
	"X-Frame-Options":         "DENY",
	"X-XSS-Protection":        "1; mode=block",
	"Referrer-Policy":         "strict-origin-when-cross-origin",
	"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
}

// SecurityMiddleware sets the security headers and, when enabled, applies
// CORS through rs/cors. Preflight requests are answered by the CORS layer
// with 204 and never reach next.
func SecurityMiddleware(config SecurityConfig, next http.HandlerFunc) http.HandlerFunc {
	var handler http.Handler = next
	if config.EnableCORS {
		handler = cors.New(cors.Options{
			AllowedOrigins: config.AllowedOrigins,
			AllowedMethods: config.AllowedMethods,
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         int((12 * time.Hour).Seconds()),
		}).Handler(next)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		for k, v := range securityHeaders {
			w.Header().Set(k, v)
		}
		handler.ServeHTTP(w, r)
	}
}
