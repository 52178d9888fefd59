package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/iudanet/conflictgen/pkg/api"
)

// ReplicationHandler принимает изменения от других регионов
type ReplicationHandler struct {
	logger *slog.Logger
	region Region
}

// NewReplicationHandler создает новый replication handler
func NewReplicationHandler(logger *slog.Logger, region Region) *ReplicationHandler {
	return &ReplicationHandler{
		logger: logger,
		region: region,
	}
}

// Apply обрабатывает POST /replication/changes
func (h *ReplicationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var change api.Change
	if err := json.NewDecoder(r.Body).Decode(&change); err != nil {
		h.logger.Warn("Failed to decode change", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "BadRequest", "invalid request body")
		return
	}

	if change.SourceRegion == "" || change.Database == "" {
		writeError(w, h.logger, http.StatusBadRequest, "BadRequest", "change must name source region and database")
		return
	}
	if change.SourceRegion == h.region.Region() {
		writeError(w, h.logger, http.StatusBadRequest, "BadRequest", "change originates from this region")
		return
	}

	ack, err := h.region.ApplyChange(r.Context(), &change)
	if err != nil {
		writeStorageError(w, h.logger, err)
		return
	}

	h.logger.Debug("Change applied",
		"source", change.SourceRegion,
		"kind", change.Kind,
		"id", change.ID,
		"applied", ack.Applied,
		"conflict", ack.Conflict)

	writeJSON(w, h.logger, http.StatusOK, ack)
}
