// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"
)

// NormalizeHandler exposes URL canonicalization without side effects.
type NormalizeHandler struct {
	deps Dependencies
}

// NewNormalizeHandler creates a new normalize handler.
func NewNormalizeHandler(deps Dependencies) *NormalizeHandler {
	return &NormalizeHandler{deps: deps}
}

// HandleNormalize handles GET /normalize?url= requests.
func (h *NormalizeHandler) HandleNormalize(w http.ResponseWriter, r *http.Request) {
	const op = "api.normalize"
	raw := r.URL.Query().Get("url")
	if raw == "" {
		writeDomainError(w, wrapKind(op, ErrBadRequest, errors.New("missing url")))
		return
	}
	ref, err := h.deps.Normalize(r.Context(), raw)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ref)
}
