package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/DukeRupert/blog/internal/metrics"
)

// BasicAuthMiddleware protects a route group with HTTP basic auth.
type BasicAuthMiddleware struct {
	realm   string
	check   func(user, pass string) bool
	limiter *RateLimiter // counts failed attempts per IP, may be nil
	logger  *slog.Logger
	enabled bool
}

// NewMetricsAuthMiddleware protects the metrics endpoint with a plain
// username and password. If both are empty, authentication is disabled.
func NewMetricsAuthMiddleware(username, password string) *BasicAuthMiddleware {
	return &BasicAuthMiddleware{
		realm: "metrics",
		check: func(user, pass string) bool {
			// Use constant-time comparison to prevent timing attacks
			userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
			passMatch := subtle.ConstantTimeCompare([]byte(pass), []byte(password)) == 1
			return userMatch && passMatch
		},
		enabled: username != "" || password != "",
	}
}

// NewAdminAuthMiddleware protects the admin API. The password is checked
// against a bcrypt hash. Failed attempts count against limiter, and an IP
// over the limit is refused before its credentials are checked.
func NewAdminAuthMiddleware(username, passwordHash string, limiter *RateLimiter, logger *slog.Logger) *BasicAuthMiddleware {
	hash := []byte(passwordHash)
	return &BasicAuthMiddleware{
		realm: "admin",
		check: func(user, pass string) bool {
			userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
			// Always run bcrypt so a wrong username costs the same time
			passMatch := bcrypt.CompareHashAndPassword(hash, []byte(pass)) == nil
			return userMatch && passMatch
		},
		limiter: limiter,
		logger:  logger,
		enabled: true,
	}
}

// Handler returns middleware that requires valid credentials.
func (m *BasicAuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled {
			next.ServeHTTP(w, r)
			return
		}

		ip := ClientIP(r)
		if m.limiter != nil && m.limiter.Exhausted(ip) {
			metrics.RateLimitedTotal.WithLabelValues(m.realm).Inc()
			writeTooManyRequests(w, r, m.limiter.TimeUntilReset(ip))
			return
		}

		user, pass, ok := r.BasicAuth()
		if !ok || !m.check(user, pass) {
			if m.limiter != nil {
				m.limiter.RecordFailure(ip)
			}
			if ok && m.logger != nil {
				m.logger.Warn("basic auth failed", "realm", m.realm, "ip", ip, "user", user)
			}
			m.unauthorized(w, r)
			return
		}

		if m.limiter != nil {
			m.limiter.Reset(ip)
		}
		next.ServeHTTP(w, r)
	})
}

// unauthorized sends a 401 response with WWW-Authenticate header.
func (m *BasicAuthMiddleware) unauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", `Basic realm="`+m.realm+`", charset="UTF-8"`)
	if isAPIRequest(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":   "unauthorized",
			"message": "Authentication required",
		})
		return
	}
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}
