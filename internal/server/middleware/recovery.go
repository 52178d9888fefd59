package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/iudanet/conflictgen/internal/server/handlers"
)

// RecoveryMiddleware превращает panic обработчика в 500. Клиент видит
// обычную OtherFailure, стек остается в логе региона.
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					region, _ := handlers.GetClientRegion(r.Context())
					logger.Error("Handler panicked",
						"error", err,
						"method", r.Method,
						"path", r.URL.Path,
						"client_region", region,
						"stack", string(debug.Stack()))
					writeError(w, http.StatusInternalServerError, "InternalServerError", "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
