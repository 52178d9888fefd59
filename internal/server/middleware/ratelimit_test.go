package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/conflictgen/internal/server/handlers"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(3, 100*time.Millisecond, setupTestLogger())
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("a"), "request %d", i)
	}
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "buckets are per key")

	time.Sleep(120 * time.Millisecond)
	assert.True(t, rl.Allow("a"), "bucket refills after window")
}

func TestRateLimiter_CleanupOldBuckets(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond, setupTestLogger())
	defer rl.Stop()

	rl.Allow("old")
	time.Sleep(30 * time.Millisecond)
	rl.cleanupOldBuckets()

	rl.mu.RLock()
	_, exists := rl.buckets["old"]
	rl.mu.RUnlock()
	assert.False(t, exists)
}

func TestRateLimiter_StopTwice(t *testing.T) {
	rl := NewRateLimiter(1, time.Second, setupTestLogger())
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute, setupTestLogger())
	defer rl.Stop()

	handler := RateLimitMiddleware(rl, setupTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(region string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/dbs/db", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		if region != "" {
			req = req.WithContext(context.WithValue(req.Context(), handlers.ClientRegionKey, region))
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send("West US").Code)
	assert.Equal(t, http.StatusOK, send("West US").Code)

	w := send("West US")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "TooManyRequests")

	// Другой регион с того же адреса имеет свой бюджет
	assert.Equal(t, http.StatusOK, send("East US").Code)
	// Без токена ключом служит IP
	assert.Equal(t, http.StatusOK, send("").Code)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		headers    map[string]string
		name       string
		remoteAddr string
		want       string
	}{
		{name: "remote addr", remoteAddr: "192.168.1.1:1234", want: "192.168.1.1:1234"},
		{name: "x-forwarded-for list", headers: map[string]string{"X-Forwarded-For": "10.0.0.1,10.0.0.2"}, want: "10.0.0.1"},
		{name: "x-real-ip", headers: map[string]string{"X-Real-IP": "10.0.0.3"}, want: "10.0.0.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.remoteAddr != "" {
				req.RemoteAddr = tt.remoteAddr
			}
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}
