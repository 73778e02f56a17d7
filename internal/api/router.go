package api

import (
	"net/http"

	"field-service-scheduler/internal/api/handlers"
	"field-service-scheduler/internal/ports"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(
	repo ports.ScheduleRepository,
	props ports.PropertyDirectory,
	geocoder ports.Geocoder,
	geoCache ports.GeocodeCache,
) http.Handler {
	mux := http.NewServeMux()

	jobHandler := &handlers.JobHandler{Repo: repo}
	scheduleHandler := &handlers.ScheduleHandler{Repo: repo}
	confidenceHandler := &handlers.ConfidenceHandler{Props: props, Geocoder: geocoder, Cache: geoCache}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/jobs", jobHandler.List)
	mux.HandleFunc("/schedules", scheduleHandler.Compute)
	mux.HandleFunc("/schedules/export", scheduleHandler.ExportCSV)
	mux.HandleFunc("/properties/confidence", confidenceHandler.Scan)

	return loggingMiddleware(mux)
}
