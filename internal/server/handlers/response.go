package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/conflictgen/internal/models"
	"github.com/iudanet/conflictgen/internal/server/region"
	"github.com/iudanet/conflictgen/internal/server/storage"
	"github.com/iudanet/conflictgen/internal/validation"
	"github.com/iudanet/conflictgen/pkg/api"
)

// writeJSON отправляет JSON ответ
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// writeError отправляет ErrorResponse с кодом ошибки протокола
func writeError(w http.ResponseWriter, logger *slog.Logger, status int, code, message string) {
	writeJSON(w, logger, status, api.ErrorResponse{Error: code, Message: message})
}

// writeStorageError переводит ошибку региона в HTTP статус.
// Внутренние ошибки логируются, клиенту уходит только общий текст.
func writeStorageError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, storage.ErrDocumentExists):
		writeError(w, logger, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, storage.ErrPreconditionFailed):
		writeError(w, logger, http.StatusPreconditionFailed, "PreconditionFailed", err.Error())
	case errors.Is(err, storage.ErrDocumentNotFound),
		errors.Is(err, storage.ErrCollectionNotFound),
		errors.Is(err, storage.ErrDatabaseNotFound),
		errors.Is(err, storage.ErrConflictNotFound):
		writeError(w, logger, http.StatusNotFound, "NotFound", err.Error())
	case errors.Is(err, region.ErrWriteForbidden):
		writeError(w, logger, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, storage.ErrCrossPartitionRequired),
		errors.Is(err, storage.ErrInvalidFilter):
		writeError(w, logger, http.StatusBadRequest, "BadRequest", err.Error())
	default:
		logger.Error("Request failed", "error", err)
		writeError(w, logger, http.StatusInternalServerError, "InternalServerError", "internal server error")
	}
}

// collectionRef извлекает и проверяет {db}/{coll} из пути запроса
func collectionRef(r *http.Request) (models.CollectionRef, error) {
	ref := models.CollectionRef{
		Database:   r.PathValue("db"),
		Collection: r.PathValue("coll"),
	}
	if err := validation.ValidateResourceID("database", ref.Database); err != nil {
		return ref, err
	}
	if err := validation.ValidateResourceID("collection", ref.Collection); err != nil {
		return ref, err
	}
	return ref, nil
}
