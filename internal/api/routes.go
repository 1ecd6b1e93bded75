package api

import (
	"github.com/gorilla/mux"

	"github.com/tradejournal/trade-journal-service/internal/auth"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler, authManager *auth.Manager) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Auth routes
	api.HandleFunc("/auth/signup", handler.Signup).Methods("POST")
	api.HandleFunc("/auth/login", handler.Login).Methods("POST")

	// Everything below requires a valid token
	protected := api.NewRoute().Subrouter()
	protected.Use(authManager.Middleware)

	protected.HandleFunc("/auth/me", handler.Me).Methods("GET")

	// Trade routes
	protected.HandleFunc("/trades", handler.ListTrades).Methods("GET")
	protected.HandleFunc("/trades", handler.CreateTrade).Methods("POST")
	protected.HandleFunc("/trades/{id}", handler.GetTrade).Methods("GET")
	protected.HandleFunc("/trades/{id}", handler.UpdateTrade).Methods("PUT")
	protected.HandleFunc("/trades/{id}", handler.DeleteTrade).Methods("DELETE")
	protected.HandleFunc("/trades/{id}/cancel", handler.CancelTrade).Methods("POST")
	protected.HandleFunc("/trades/{id}/events", handler.ListEvents).Methods("GET")
	protected.HandleFunc("/trades/{id}/events", handler.AppendEvent).Methods("POST")
	protected.HandleFunc("/trades/{id}/events/export", handler.ExportEvents).Methods("GET")

	// Report routes
	protected.HandleFunc("/reports/overview", handler.GetOverview).Methods("GET")
	protected.HandleFunc("/reports/deviations", handler.GetDeviations).Methods("GET")
	protected.HandleFunc("/reports/equity", handler.GetEquityCurve).Methods("GET")

	// Risk routes
	protected.HandleFunc("/risk/policy", handler.GetRiskPolicy).Methods("GET")
	protected.HandleFunc("/risk/policy", handler.PutRiskPolicy).Methods("PUT")
	protected.HandleFunc("/risk/alerts", handler.GetRiskAlerts).Methods("GET")

	// Setup and tag routes
	protected.HandleFunc("/setups", handler.ListSetups).Methods("GET")
	protected.HandleFunc("/setups", handler.CreateSetup).Methods("POST")
	protected.HandleFunc("/setups/{id}", handler.DeleteSetup).Methods("DELETE")
	protected.HandleFunc("/tags", handler.ListTags).Methods("GET")
	protected.HandleFunc("/tags", handler.CreateTag).Methods("POST")
	protected.HandleFunc("/tags/{id}", handler.DeleteTag).Methods("DELETE")

	return r
}
