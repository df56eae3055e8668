// Package http serves the draft endpoints of the create-order flow and the
// operational routes next to the gRPC API.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"rentaldesk-backend/internal/logger"
	"rentaldesk-backend/internal/security"
	"rentaldesk-backend/internal/service"
)

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type RouterConfig struct {
	Drafts    DraftStore
	Customers service.CustomerService
	Sessions  service.SessionService
	Tokens    security.TokenManager
	Health    HealthChecker
	// Metrics is served at /metrics when set.
	Metrics  http.Handler
	Location *time.Location
}

func NewRouter(cfg RouterConfig) *mux.Router {
	router := mux.NewRouter()
	router.Use(requestID)

	router.HandleFunc("/healthz", healthHandler(cfg.Health)).Methods(http.MethodGet)
	if cfg.Metrics != nil {
		router.Handle("/metrics", cfg.Metrics).Methods(http.MethodGet)
	}

	auth := &authenticator{tokens: cfg.Tokens, sessions: cfg.Sessions}
	api := router.PathPrefix("/v1").Subrouter()
	api.Use(auth.middleware)

	drafts := NewDraftHandler(cfg.Drafts, cfg.Customers, cfg.Location)
	api.HandleFunc("/drafts", drafts.GetDraft).Methods(http.MethodGet)
	api.HandleFunc("/drafts", drafts.UpdateDraft).Methods(http.MethodPut)
	api.HandleFunc("/drafts", drafts.ClearDraft).Methods(http.MethodDelete)
	api.HandleFunc("/drafts/items", drafts.AddItem).Methods(http.MethodPost)
	api.HandleFunc("/drafts/items/{index:[0-9]+}", drafts.UpdateItem).Methods(http.MethodPut)
	api.HandleFunc("/drafts/items/{index:[0-9]+}", drafts.RemoveItem).Methods(http.MethodDelete)
	api.HandleFunc("/drafts/submit", drafts.Submit).Methods(http.MethodPost)
	api.HandleFunc("/customers", drafts.SearchCustomers).Methods(http.MethodGet)
	api.HandleFunc("/customers", drafts.CreateCustomer).Methods(http.MethodPost)

	return router
}

func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := checker.Ping(ctx); err != nil {
				logger.Warn("Health check failed", "error", err)
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
