// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/pricetrack/internal/adapters/identity"
	"github.com/okian/pricetrack/internal/domain/model"
	"github.com/okian/pricetrack/internal/tracking"
)

// ItemsHandler handles the tracked-item collection routes.
type ItemsHandler struct {
	deps Dependencies
}

// NewItemsHandler creates a new items handler.
func NewItemsHandler(deps Dependencies) *ItemsHandler {
	return &ItemsHandler{deps: deps}
}

// addRequest mirrors the OpenAPI schema for POST /items.
type addRequest struct {
	URL string `json:"url"`
}

func (a addRequest) validate() error {
	if strings.TrimSpace(a.URL) == "" {
		return errors.New("missing url")
	}
	return nil
}

type mutationResponse struct {
	Message      string   `json:"message"`
	RefreshError string   `json:"refresh_error,omitempty"`
	Snapshot     Snapshot `json:"snapshot"`
}

// HandleList handles GET /items requests.
func (h *ItemsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, _ := identity.FromContext(r.Context())
	snap, err := h.deps.Snapshot(r.Context(), user)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleRefresh handles POST /items/refresh requests.
func (h *ItemsHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	user, _ := identity.FromContext(r.Context())
	snap, err := h.deps.Refresh(r.Context(), user)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleAdd handles POST /items requests.
func (h *ItemsHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_item"
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDomainError(w, wrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeDomainError(w, wrapKind(op, ErrBadRequest, err))
		return
	}

	user, _ := identity.FromContext(r.Context())
	out, snap, err := h.deps.Add(r.Context(), user, req.URL)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := mutationResponse{Message: out.Message, Snapshot: snap}
	if out.RefreshErr != nil {
		resp.RefreshError = tracking.UserMessage(out.RefreshErr)
	}
	writeJSON(w, http.StatusCreated, resp)
}

// HandleDelete handles DELETE /items/{id} requests.
func (h *ItemsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_item"
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeDomainError(w, wrapKind(op, ErrBadRequest, errors.New("missing item id")))
		return
	}

	user, _ := identity.FromContext(r.Context())
	snap, err := h.deps.Delete(r.Context(), user, model.ItemID(id))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mutationResponse{Message: tracking.MsgDeleted, Snapshot: snap})
}
