package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqllab/internal/domain"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
}

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	t.Parallel()
	handler := RateLimiter(t.Context(), RateLimitConfig{RequestsPerSecond: 100, Burst: 10})(okHandler())

	for range 5 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "10", rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimiter_RejectsOverBurst(t *testing.T) {
	t.Parallel()
	handler := RateLimiter(t.Context(), RateLimitConfig{RequestsPerSecond: 1, Burst: 2})(okHandler())

	for range 2 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.InDelta(t, float64(429), body["code"], 0.001)
	assert.Equal(t, "rate limit exceeded", body["message"])
}

func TestRateLimiter_KeysByCallerThenAddress(t *testing.T) {
	t.Parallel()
	handler := RateLimiter(t.Context(), RateLimitConfig{RequestsPerSecond: 1, Burst: 1})(okHandler())

	request := func(remote, user string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		if user != "" {
			req = req.WithContext(domain.WithCaller(req.Context(), domain.Caller{UserID: user}))
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, request("10.0.0.1:1234", ""))
	assert.Equal(t, http.StatusTooManyRequests, request("10.0.0.1:5678", ""))
	assert.Equal(t, http.StatusOK, request("10.0.0.2:1234", ""))

	// Authenticated callers behind one address get separate buckets.
	assert.Equal(t, http.StatusOK, request("10.0.0.1:1234", "alice"))
	assert.Equal(t, http.StatusOK, request("10.0.0.1:1234", "bob"))
	assert.Equal(t, http.StatusTooManyRequests, request("10.0.0.9:1234", "alice"))
}

func TestClientKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		remote string
		caller *domain.Caller
		want   string
	}{
		{"address with port", "192.168.1.5:4000", nil, "ip:192.168.1.5"},
		{"address without port", "192.168.1.5", nil, "ip:192.168.1.5"},
		{"caller", "192.168.1.5:4000", &domain.Caller{UserID: "alice"}, "user:alice"},
		{"anonymous caller uses address", "192.168.1.5:4000", &domain.Caller{UserID: AnonymousUser}, "ip:192.168.1.5"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			if tc.caller != nil {
				req = req.WithContext(domain.WithCaller(req.Context(), *tc.caller))
			}
			assert.Equal(t, tc.want, clientKey(req))
		})
	}
}
