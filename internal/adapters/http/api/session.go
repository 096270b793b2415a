// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/okian/pricetrack/internal/adapters/identity"
)

// SessionHandler handles identity and logout routes.
type SessionHandler struct {
	deps Dependencies
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps Dependencies) *SessionHandler {
	return &SessionHandler{deps: deps}
}

// HandleMe handles GET /me requests.
func (h *SessionHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := identity.FromContext(r.Context())
	writeJSON(w, http.StatusOK, user)
}

type logoutResponse struct {
	Status string `json:"status"`
	Closed bool   `json:"closed"`
}

// HandleLogout handles POST /logout requests. The collection is discarded;
// signing out of the identity provider is the proxy's job.
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	user, _ := identity.FromContext(r.Context())
	closed := h.deps.Close(r.Context(), user.Email)
	writeJSON(w, http.StatusOK, logoutResponse{Status: "logged_out", Closed: closed})
}
