// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/pricetrack/internal/adapters/identity"
	service "github.com/okian/pricetrack/internal/app"
	"github.com/okian/pricetrack/internal/domain/marketplace"
	"github.com/okian/pricetrack/internal/domain/model"
	"github.com/okian/pricetrack/internal/tracking"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Snapshot(ctx context.Context, user identity.Identity) (Snapshot, error)
	Refresh(ctx context.Context, user identity.Identity) (Snapshot, error)
	Add(ctx context.Context, user identity.Identity, rawURL string) (tracking.AddOutcome, Snapshot, error)
	Delete(ctx context.Context, user identity.Identity, id model.ItemID) (Snapshot, error)
	Normalize(ctx context.Context, raw string) (marketplace.ProductRef, error)

	// Close discards the user's session. Returns false if none was open.
	Close(ctx context.Context, email string) bool
}

// Snapshot mirrors the render shape produced by the session registry.
type Snapshot = service.Snapshot

// Server wires HTTP routes for the gateway API.
type Server struct {
	opsHandler       *OpsHandler
	itemsHandler     *ItemsHandler
	normalizeHandler *NormalizeHandler
	sessionHandler   *SessionHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		opsHandler:       NewOpsHandler(statsProvider),
		itemsHandler:     NewItemsHandler(deps),
		normalizeHandler: NewNormalizeHandler(deps),
		sessionHandler:   NewSessionHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.opsHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.opsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /metrics", s.opsHandler.HandleMetrics)
	mux.HandleFunc("GET /normalize", MetricsMiddleware(s.normalizeHandler.HandleNormalize, "normalize"))

	mux.HandleFunc("GET /items", MetricsMiddleware(IdentityMiddleware(s.itemsHandler.HandleList), "items_list"))
	mux.HandleFunc("POST /items", MetricsMiddleware(IdentityMiddleware(s.itemsHandler.HandleAdd), "items_add"))
	mux.HandleFunc("POST /items/refresh", MetricsMiddleware(IdentityMiddleware(s.itemsHandler.HandleRefresh), "items_refresh"))
	mux.HandleFunc("DELETE /items/{id}", MetricsMiddleware(IdentityMiddleware(s.itemsHandler.HandleDelete), "items_delete"))

	mux.HandleFunc("GET /me", MetricsMiddleware(IdentityMiddleware(s.sessionHandler.HandleMe), "me"))
	mux.HandleFunc("POST /logout", MetricsMiddleware(IdentityMiddleware(s.sessionHandler.HandleLogout), "logout"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
