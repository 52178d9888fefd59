package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/conflictgen/internal/models"
	"github.com/iudanet/conflictgen/internal/validation"
	"github.com/iudanet/conflictgen/pkg/api"
)

// DocumentHandler обрабатывает запросы к документам коллекции
type DocumentHandler struct {
	logger *slog.Logger
	region Region
}

// NewDocumentHandler создает новый document handler
func NewDocumentHandler(logger *slog.Logger, region Region) *DocumentHandler {
	return &DocumentHandler{
		logger: logger,
		region: region,
	}
}

// Create обрабатывает POST /dbs/{db}/colls/{coll}/docs
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ref, rec, ok := h.decodeWrite(w, r)
	if !ok {
		return
	}

	created, err := h.region.CreateDocument(r.Context(), ref, rec)
	if err != nil {
		writeStorageError(w, h.logger, err)
		return
	}

	h.writeRecord(w, http.StatusCreated, created)
}

// Replace обрабатывает PUT /dbs/{db}/colls/{coll}/docs/{id}
// Заголовок If-Match делает замену условной
func (h *DocumentHandler) Replace(w http.ResponseWriter, r *http.Request) {
	ref, rec, ok := h.decodeWrite(w, r)
	if !ok {
		return
	}

	if id := r.PathValue("id"); id != rec.ID {
		writeError(w, h.logger, http.StatusBadRequest, "BadRequest", "document id does not match the path")
		return
	}

	replaced, err := h.region.ReplaceDocument(r.Context(), ref, rec, r.Header.Get(api.HeaderIfMatch))
	if err != nil {
		writeStorageError(w, h.logger, err)
		return
	}

	h.writeRecord(w, http.StatusOK, replaced)
}

// Delete обрабатывает DELETE /dbs/{db}/colls/{coll}/docs/{id}
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ref, id, pk, ok := h.documentAddress(w, r)
	if !ok {
		return
	}

	if err := h.region.CheckWritable(multipleWriteLocations(r)); err != nil {
		writeStorageError(w, h.logger, err)
		return
	}

	if err := h.region.DeleteDocument(r.Context(), ref, id, pk, r.Header.Get(api.HeaderIfMatch)); err != nil {
		writeStorageError(w, h.logger, err)
		return
	}

	w.Header().Set(api.HeaderRegion, h.region.Region())
	w.WriteHeader(http.StatusNoContent)
}

// Get обрабатывает GET /dbs/{db}/colls/{coll}/docs/{id}
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	ref, id, pk, ok := h.documentAddress(w, r)
	if !ok {
		return
	}

	rec, err := h.region.GetDocument(r.Context(), ref, id, pk)
	if err != nil {
		writeStorageError(w, h.logger, err)
		return
	}

	h.writeRecord(w, http.StatusOK, rec)
}

// Query обрабатывает POST /dbs/{db}/colls/{coll}/query
func (h *DocumentHandler) Query(w http.ResponseWriter, r *http.Request) {
	ref, err := collectionRef(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "BadRequest", err.Error())
		return
	}

	var req api.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "BadRequest", "invalid request body")
		return
	}

	docs, err := h.region.QueryDocuments(r.Context(), ref, req)
	if err != nil {
		writeStorageError(w, h.logger, err)
		return
	}

	w.Header().Set(api.HeaderRegion, h.region.Region())
	writeJSON(w, h.logger, http.StatusOK, api.QueryResponse{Documents: docs, Count: len(docs)})
}

// decodeWrite проверяет право записи и читает документ из тела запроса
func (h *DocumentHandler) decodeWrite(w http.ResponseWriter, r *http.Request) (models.CollectionRef, *models.Record, bool) {
	ref, err := collectionRef(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "BadRequest", err.Error())
		return ref, nil, false
	}

	if err := h.region.CheckWritable(multipleWriteLocations(r)); err != nil {
		writeStorageError(w, h.logger, err)
		return ref, nil, false
	}

	var rec models.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		h.logger.Warn("Failed to decode document", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "BadRequest", "invalid request body")
		return ref, nil, false
	}

	if err := validation.ValidateResourceID("document", rec.ID); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "BadRequest", err.Error())
		return ref, nil, false
	}
	if err := rec.Validate(); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "BadRequest", err.Error())
		return ref, nil, false
	}

	if pk := r.Header.Get(api.HeaderPartitionKey); pk != "" && pk != rec.PartitionKey() {
		writeError(w, h.logger, http.StatusBadRequest, "BadRequest", "partition key header does not match the document")
		return ref, nil, false
	}

	return ref, &rec, true
}

// documentAddress извлекает коллекцию, id и ключ партиции документа.
// Ключ партиции берется из заголовка или параметра pk.
func (h *DocumentHandler) documentAddress(w http.ResponseWriter, r *http.Request) (models.CollectionRef, string, string, bool) {
	ref, err := collectionRef(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "BadRequest", err.Error())
		return ref, "", "", false
	}

	id := r.PathValue("id")
	if err := validation.ValidateResourceID("document", id); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "BadRequest", err.Error())
		return ref, "", "", false
	}

	pk := r.Header.Get(api.HeaderPartitionKey)
	if pk == "" {
		pk = r.URL.Query().Get("pk")
	}
	if pk == "" {
		writeError(w, h.logger, http.StatusBadRequest, "BadRequest", "partition key is required")
		return ref, "", "", false
	}

	return ref, id, pk, true
}

func (h *DocumentHandler) writeRecord(w http.ResponseWriter, status int, rec *models.Record) {
	w.Header().Set(api.HeaderETag, rec.ETag)
	w.Header().Set(api.HeaderRegion, h.region.Region())
	writeJSON(w, h.logger, status, rec)
}

func multipleWriteLocations(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get(api.HeaderMultipleWriteLocations), "true")
}
