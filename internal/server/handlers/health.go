package handlers

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/conflictgen/pkg/api"
)

// HealthHandler обрабатывает health check запросы
type HealthHandler struct {
	logger  *slog.Logger
	region  Region
	version string
}

// NewHealthHandler создает новый handler для health check
func NewHealthHandler(logger *slog.Logger, region Region, version string) *HealthHandler {
	return &HealthHandler{
		logger:  logger,
		region:  region,
		version: version,
	}
}

// Health обрабатывает GET /health
// Клиент по ответу проверяет, что endpoint обслуживает ожидаемый регион
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := api.HealthResponse{
		Status:      "ok",
		Region:      h.region.Region(),
		HubRegion:   h.region.HubRegion(),
		Version:     h.version,
		Clock:       h.region.Clock(),
		MultiMaster: h.region.MultiMaster(),
	}

	w.Header().Set(api.HeaderRegion, resp.Region)
	writeJSON(w, h.logger, http.StatusOK, resp)
}
