package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/iudanet/conflictgen/internal/models"
	"github.com/iudanet/conflictgen/internal/validation"
	"github.com/iudanet/conflictgen/pkg/api"
)

// SchemaHandler обрабатывает создание баз данных и коллекций
type SchemaHandler struct {
	logger *slog.Logger
	region Region
}

// NewSchemaHandler создает новый schema handler
func NewSchemaHandler(logger *slog.Logger, region Region) *SchemaHandler {
	return &SchemaHandler{
		logger: logger,
		region: region,
	}
}

// PutDatabase обрабатывает PUT /dbs/{db}
// 201 если база создана, 200 если уже существовала
func (h *SchemaHandler) PutDatabase(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("db")
	if err := validation.ValidateResourceID("database", id); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "BadRequest", err.Error())
		return
	}

	created, err := h.region.CreateDatabase(r.Context(), id)
	if err != nil {
		writeStorageError(w, h.logger, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, h.logger, status, map[string]string{"id": id})
}

// PutCollection обрабатывает PUT /dbs/{db}/colls/{coll}
func (h *SchemaHandler) PutCollection(w http.ResponseWriter, r *http.Request) {
	ref, err := collectionRef(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "BadRequest", err.Error())
		return
	}

	var req api.CollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Failed to decode collection request", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "BadRequest", "invalid request body")
		return
	}

	if req.PartitionKeyPath == "" {
		req.PartitionKeyPath = models.PartitionKeyPath
	}
	if err := req.Policy.Validate(); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "BadRequest", err.Error())
		return
	}

	coll, created, err := h.region.CreateCollection(r.Context(), &models.Collection{
		ID:               ref.Collection,
		Database:         ref.Database,
		PartitionKeyPath: req.PartitionKeyPath,
		Policy:           req.Policy,
	})
	if err != nil {
		writeStorageError(w, h.logger, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, h.logger, status, coll)
}

// GetCollection обрабатывает GET /dbs/{db}/colls/{coll}
func (h *SchemaHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	ref, err := collectionRef(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "BadRequest", err.Error())
		return
	}

	coll, err := h.region.GetCollection(r.Context(), ref)
	if err != nil {
		writeStorageError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, coll)
}
