package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/dashboard", handler.GetDashboard).Methods("GET")
	api.HandleFunc("/alerts", handler.GetAlertHistory).Methods("GET")

	api.HandleFunc("/positions", handler.GetAllPositions).Methods("GET")
	api.HandleFunc("/positions", handler.AddPosition).Methods("POST")
	api.HandleFunc("/positions/{code}", handler.UpdatePosition).Methods("PUT")
	api.HandleFunc("/positions/{code}", handler.RemovePosition).Methods("DELETE")

	// Option routes; the static paths are registered before {code}
	api.HandleFunc("/options", handler.GetAllOptions).Methods("GET")
	api.HandleFunc("/options", handler.AddOption).Methods("POST")
	api.HandleFunc("/options/dashboard", handler.GetOptionsDashboard).Methods("GET")
	api.HandleFunc("/options/decode/{code}", handler.DecodeOption).Methods("GET")
	api.HandleFunc("/options/{code}", handler.RemoveOption).Methods("DELETE")

	return r
}
