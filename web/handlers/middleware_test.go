package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scrypster/promptcraft/internal/config"
	"github.com/scrypster/promptcraft/web/handlers"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name   string
		mode   string
		token  string
		header string
		want   int
	}{
		{"development skips auth", "development", "secret", "", http.StatusOK},
		{"missing token", "production", "secret", "", http.StatusUnauthorized},
		{"wrong token", "production", "secret", "Bearer nope", http.StatusUnauthorized},
		{"missing bearer prefix", "production", "secret", "secret", http.StatusUnauthorized},
		{"no configured token", "production", "", "Bearer ", http.StatusUnauthorized},
		{"valid token", "production", "secret-token", "Bearer secret-token", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Security: config.SecurityConfig{Mode: tt.mode, APIToken: tt.token}}
			handler := handlers.RequireAuth(okHandler(), cfg)

			req := httptest.NewRequest(http.MethodGet, "/api/templates", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
			}
		})
	}
}

func TestRateLimitMiddleware_AllowsNormalRate(t *testing.T) {
	limiter := handlers.NewRateLimiter(10, 20)
	handler := handlers.RateLimitMiddleware(okHandler(), limiter)

	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/usage", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimitMiddleware_RejectsExcessiveRate(t *testing.T) {
	limiter := handlers.NewRateLimiter(1, 2)
	handler := handlers.RateLimitMiddleware(okHandler(), limiter)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/usage", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/usage", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")
}

func TestRateLimitMiddleware_ZeroRateDisablesLimit(t *testing.T) {
	handler := handlers.RateLimitMiddleware(okHandler(), handlers.NewRateLimiter(0, 0))
	for i := 0; i < 50; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	handlers.SecurityHeaders(okHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}
