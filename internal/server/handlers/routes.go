package handlers

import (
	"log/slog"
	"net/http"
)

// HealthPath путь health check, доступный без авторизации
const HealthPath = "/health"

// NewMux регистрирует все маршруты региона
func NewMux(logger *slog.Logger, region Region, version string) *http.ServeMux {
	health := NewHealthHandler(logger, region, version)
	schema := NewSchemaHandler(logger, region)
	docs := NewDocumentHandler(logger, region)
	conflicts := NewConflictHandler(logger, region)
	replication := NewReplicationHandler(logger, region)

	mux := http.NewServeMux()

	mux.HandleFunc("GET "+HealthPath, health.Health)

	mux.HandleFunc("PUT /dbs/{db}", schema.PutDatabase)
	mux.HandleFunc("PUT /dbs/{db}/colls/{coll}", schema.PutCollection)
	mux.HandleFunc("GET /dbs/{db}/colls/{coll}", schema.GetCollection)

	mux.HandleFunc("POST /dbs/{db}/colls/{coll}/docs", docs.Create)
	mux.HandleFunc("GET /dbs/{db}/colls/{coll}/docs/{id}", docs.Get)
	mux.HandleFunc("PUT /dbs/{db}/colls/{coll}/docs/{id}", docs.Replace)
	mux.HandleFunc("DELETE /dbs/{db}/colls/{coll}/docs/{id}", docs.Delete)
	mux.HandleFunc("POST /dbs/{db}/colls/{coll}/query", docs.Query)

	mux.HandleFunc("GET /dbs/{db}/colls/{coll}/conflicts", conflicts.List)
	mux.HandleFunc("DELETE /dbs/{db}/colls/{coll}/conflicts/{cid}", conflicts.Delete)

	mux.HandleFunc("POST /replication/changes", replication.Apply)

	return mux
}
