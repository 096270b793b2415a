package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/pricetrack/internal/adapters/identity"
	service "github.com/okian/pricetrack/internal/app"
	"github.com/okian/pricetrack/internal/domain/marketplace"
	"github.com/okian/pricetrack/internal/tracking"
)

// Sentinel kinds for API errors.
var (
	ErrServe      = errors.New("http serve failed")
	ErrBadRequest = errors.New("bad request")
)

// wrapKind tags err with an operation and a sentinel kind.
func wrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// statusFor maps a domain error to an HTTP status and a stable error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, identity.ErrUnauthenticated), errors.Is(err, tracking.ErrMissingIdentity):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, tracking.ErrBusy):
		return http.StatusConflict, "busy"
	case errors.Is(err, marketplace.ErrInvalidURL),
		errors.Is(err, marketplace.ErrUnsupportedMarketplace),
		errors.Is(err, marketplace.ErrIdentifierNotFound):
		return http.StatusBadRequest, "invalid_url"
	case errors.Is(err, tracking.ErrServerValidation):
		return http.StatusUnprocessableEntity, "rejected"
	case errors.Is(err, tracking.ErrUserNotFound):
		return http.StatusNotFound, "user_not_found"
	case errors.Is(err, tracking.ErrDuplicateItem):
		return http.StatusConflict, "duplicate"
	case errors.Is(err, tracking.ErrTransport):
		return http.StatusBadGateway, "upstream_unreachable"
	case errors.Is(err, tracking.ErrInternalService),
		errors.Is(err, tracking.ErrUnexpectedStatus),
		errors.Is(err, tracking.ErrDeleteRejected):
		return http.StatusBadGateway, "upstream_error"
	case errors.Is(err, service.ErrTooManySessions), errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// userMessage is the text shown for err. Request-shape errors keep their
// own text; everything else goes through the tracking message table.
func userMessage(err error) string {
	if errors.Is(err, ErrBadRequest) {
		return err.Error()
	}
	if errors.Is(err, identity.ErrUnauthenticated) {
		return tracking.MsgMissingIdentity
	}
	return tracking.UserMessage(err)
}

// writeDomainError renders err as an errorResponse.
func writeDomainError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeJSON(w, status, errorResponse{Code: code, Message: userMessage(err)})
}
