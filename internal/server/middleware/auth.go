package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/conflictgen/internal/server/handlers"
	"github.com/iudanet/conflictgen/internal/token"
)

// AuthMiddleware создает middleware для проверки токена запроса.
// Токен подписан ключом аккаунта; регион из claims кладется в контекст.
// Пути из publicPaths доступны без токена.
func AuthMiddleware(logger *slog.Logger, cfg token.Config, publicPaths ...string) func(http.Handler) http.Handler {
	public := make(map[string]bool, len(publicPaths))
	for _, p := range publicPaths {
		public[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if public[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			// Извлекаем токен из заголовка Authorization
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("Missing Authorization header", "path", r.URL.Path)
				writeError(w, http.StatusUnauthorized, "Unauthorized", "missing token")
				return
			}

			// Ожидаем формат: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("Invalid Authorization header format")
				writeError(w, http.StatusUnauthorized, "Unauthorized", "invalid token format")
				return
			}

			claims, err := token.Validate(cfg, parts[1])
			if err != nil {
				logger.Warn("Invalid request token", "error", err)
				writeError(w, http.StatusUnauthorized, "Unauthorized", "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), handlers.ClientRegionKey, claims.Region)
			logger.Debug("Request authenticated", "client_region", claims.Region)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
