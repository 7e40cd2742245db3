package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serveBasicAuth(h http.Handler, user, pass string, withAuth bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/admin/posts", nil)
	req.RemoteAddr = "192.0.2.10:4000"
	if withAuth {
		req.SetBasicAuth(user, pass)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMetricsAuthMiddleware(t *testing.T) {
	h := NewMetricsAuthMiddleware("prom", "scrape").Handler(okHandler())

	tests := []struct {
		name     string
		user     string
		pass     string
		withAuth bool
		want     int
	}{
		{"valid", "prom", "scrape", true, http.StatusOK},
		{"wrong password", "prom", "nope", true, http.StatusUnauthorized},
		{"wrong user", "admin", "scrape", true, http.StatusUnauthorized},
		{"no credentials", "", "", false, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveBasicAuth(h, tt.user, tt.pass, tt.withAuth)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") == "" {
				t.Error("expected WWW-Authenticate header")
			}
		})
	}
}

func TestMetricsAuthMiddleware_DisabledWithoutCredentials(t *testing.T) {
	h := NewMetricsAuthMiddleware("", "").Handler(okHandler())

	if rec := serveBasicAuth(h, "", "", false); rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 when auth is disabled", rec.Code)
	}
}

func TestAdminAuthMiddleware(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	limiter, _ := newTestLimiter(t, 2, time.Minute)
	h := NewAdminAuthMiddleware("admin", string(hash), limiter, discardLogger()).Handler(okHandler())

	if rec := serveBasicAuth(h, "admin", "correct horse", true); rec.Code != http.StatusOK {
		t.Fatalf("valid credentials: status = %d", rec.Code)
	}

	rec := serveBasicAuth(h, "admin", "wrong", true)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status = %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("admin errors should be JSON, got %q", rec.Header().Get("Content-Type"))
	}

	// A successful login clears earlier failures
	serveBasicAuth(h, "admin", "correct horse", true)
	if limiter.Exhausted("192.0.2.10") {
		t.Fatal("success should reset the failure count")
	}

	serveBasicAuth(h, "root", "correct horse", true)
	serveBasicAuth(h, "admin", "wrong", true)

	// Locked out even with the right password
	rec = serveBasicAuth(h, "admin", "correct horse", true)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429 after repeated failures", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}
