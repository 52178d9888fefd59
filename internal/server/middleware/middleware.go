// Package middleware содержит HTTP middleware региона.
package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/iudanet/conflictgen/pkg/api"
)

// Chain оборачивает handler в middleware. Первый middleware выполняется первым.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: code, Message: message})
}
