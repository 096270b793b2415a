package tracking

import (
	"errors"
	"fmt"

	"github.com/okian/pricetrack/internal/domain/marketplace"
)

// Sentinel kinds for synchronizer failures. Canonicalization failures keep
// their marketplace kinds and are returned unchanged.
var (
	ErrMissingIdentity  = errors.New("missing user identity")
	ErrServerValidation = errors.New("tracking service rejected the url")
	ErrUserNotFound     = errors.New("user not found")
	ErrDuplicateItem    = errors.New("item already tracked")
	ErrInternalService  = errors.New("tracking service internal error")
	ErrTransport        = errors.New("tracking service transport failure")
	ErrUnexpectedStatus = errors.New("unexpected tracking service status")
	ErrDeleteRejected   = errors.New("delete rejected")
	ErrBusy             = errors.New("another request is in progress")
)

// User-facing messages.
const (
	MsgAdded             = "Successfully added new url to track"
	MsgDeleted           = "Item successfully deleted!"
	MsgMissingIdentity   = "User email not found. Please log in again."
	MsgUserNotFound      = "User not found"
	MsgDuplicateItem     = "This item is already being tracked"
	MsgInternalService   = "An internal server error occurred"
	MsgUnexpected        = "An unexpected error occurred"
	MsgSubmitFailed      = "Failed to process URL"
	MsgListFailed        = "Failed to load tracked items"
	MsgDeleteFailed      = "Failed to delete item"
	MsgBusy              = "Another request is already in progress"
	MsgInvalidURL        = "Invalid URL"
	MsgUnsupported       = "Not an Amazon or Ebay URL"
	MsgIdentifierMissing = "Invalid URL: Could not find valid Amazon ASIN in URL"
)

// Error is a classified synchronizer failure. Kind is one of the sentinels
// above; Message is safe to show to the user; Err is the underlying cause
// and may carry raw service text that must not be shown.
type Error struct {
	Op      string
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Kind)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func newError(op string, kind error, msg string, cause error) *Error {
	return &Error{Op: op, Kind: kind, Message: msg, Err: cause}
}

// UserMessage converts any error returned by this package (or by
// marketplace.Normalize) into the text shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var te *Error
	if errors.As(err, &te) && te.Message != "" {
		return te.Message
	}

	switch {
	case errors.Is(err, marketplace.ErrUnsupportedMarketplace):
		return MsgUnsupported
	case errors.Is(err, marketplace.ErrIdentifierNotFound):
		return MsgIdentifierMissing
	case errors.Is(err, marketplace.ErrInvalidURL):
		return MsgInvalidURL
	case errors.Is(err, ErrBusy):
		return MsgBusy
	case errors.Is(err, ErrMissingIdentity):
		return MsgMissingIdentity
	default:
		return MsgUnexpected
	}
}

// outcomeLabel names err for metrics.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrBusy):
		return "busy"
	case errors.Is(err, ErrMissingIdentity):
		return "missing_identity"
	case errors.Is(err, marketplace.ErrInvalidURL),
		errors.Is(err, marketplace.ErrUnsupportedMarketplace),
		errors.Is(err, marketplace.ErrIdentifierNotFound):
		return "invalid_url"
	case errors.Is(err, ErrServerValidation):
		return "server_validation"
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, ErrDuplicateItem):
		return "duplicate"
	case errors.Is(err, ErrInternalService):
		return "internal"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrDeleteRejected):
		return "rejected"
	default:
		return "unexpected"
	}
}
