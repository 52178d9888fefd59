package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/conflictgen/internal/server/handlers"
	"github.com/iudanet/conflictgen/internal/token"
)

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelError,
	}
	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler)
}

// bufferLogger пишет все уровни в буфер
func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func testTokenConfig() token.Config {
	return token.Config{
		Account: "demo",
		Secret:  []byte("test-secret-key-test-secret-key!"),
		TTL:     time.Minute,
	}
}

// regionHandler проверяет регион клиента в контексте
func regionHandler(t *testing.T, expectedRegion string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		region, ok := handlers.GetClientRegion(r.Context())
		require.True(t, ok, "client region should be in context")
		assert.Equal(t, expectedRegion, region)
		w.WriteHeader(http.StatusOK)
	}
}

func TestAuthMiddleware_Success(t *testing.T) {
	cfg := testTokenConfig()
	tok, err := token.Generate(cfg, "West US 2")
	require.NoError(t, err)

	handler := AuthMiddleware(setupTestLogger(), cfg)(regionHandler(t, "West US 2"))

	req := httptest.NewRequest(http.MethodGet, "/dbs/db", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	cfg := testTokenConfig()

	otherAccount := cfg
	otherAccount.Account = "other"
	foreign, err := token.Generate(otherAccount, "West US 2")
	require.NoError(t, err)

	otherSecret := cfg
	otherSecret.Secret = []byte("another-secret-another-secret-00")
	forged, err := token.Generate(otherSecret, "West US 2")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "basic auth", header: "Basic dXNlcjpwYXNz"},
		{name: "no token", header: "Bearer"},
		{name: "garbage token", header: "Bearer not.a.token"},
		{name: "other account", header: "Bearer " + foreign},
		{name: "wrong secret", header: "Bearer " + forged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := AuthMiddleware(setupTestLogger(), cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/dbs/db", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "Unauthorized")
			assert.False(t, called)
		})
	}
}

func TestAuthMiddleware_PublicPath(t *testing.T) {
	handler := AuthMiddleware(setupTestLogger(), testTokenConfig(), handlers.HealthPath)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodGet, handlers.HealthPath, nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
