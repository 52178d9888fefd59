package handlers

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/conflictgen/internal/validation"
	"github.com/iudanet/conflictgen/pkg/api"
)

// ConflictHandler обрабатывает запросы к conflict feed коллекции
type ConflictHandler struct {
	logger *slog.Logger
	region Region
}

// NewConflictHandler создает новый conflict handler
func NewConflictHandler(logger *slog.Logger, region Region) *ConflictHandler {
	return &ConflictHandler{
		logger: logger,
		region: region,
	}
}

// List обрабатывает GET /dbs/{db}/colls/{coll}/conflicts
func (h *ConflictHandler) List(w http.ResponseWriter, r *http.Request) {
	ref, err := collectionRef(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "BadRequest", err.Error())
		return
	}

	conflicts, err := h.region.ListConflicts(r.Context(), ref)
	if err != nil {
		writeStorageError(w, h.logger, err)
		return
	}

	w.Header().Set(api.HeaderRegion, h.region.Region())
	writeJSON(w, h.logger, http.StatusOK, api.ConflictFeedResponse{Conflicts: conflicts, Count: len(conflicts)})
}

// Delete обрабатывает DELETE /dbs/{db}/colls/{coll}/conflicts/{cid}
func (h *ConflictHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ref, err := collectionRef(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "BadRequest", err.Error())
		return
	}

	id := r.PathValue("cid")
	if err := validation.ValidateResourceID("conflict", id); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "BadRequest", err.Error())
		return
	}

	if err := h.region.DeleteConflict(r.Context(), ref, id); err != nil {
		writeStorageError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
