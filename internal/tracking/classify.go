package tracking

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/pricetrack/internal/adapters/tracker"
	"github.com/okian/pricetrack/internal/domain/marketplace"
)

// duplicateEntryMarker is the text the tracking service's database layer
// puts in the error of a 500 when the canonical URL is already tracked.
const duplicateEntryMarker = "Duplicate entry"

// IsDuplicateEntry reports whether a tracking service error text means the
// item is already tracked. The service has no structured error code for
// this; replace the body of this function when it gets one.
func IsDuplicateEntry(serviceError string) bool {
	return strings.Contains(serviceError, duplicateEntryMarker)
}

// classifySubmission maps a submit response to nil (accepted) or an *Error.
func classifySubmission(mp marketplace.Marketplace, resp tracker.Response) error {
	const op = "add"

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusBadRequest:
		return newError(op, ErrServerValidation, orDefault(resp.Message, "Invalid "+mp.String()+" URL"), nil)
	case http.StatusNotFound:
		return newError(op, ErrUserNotFound, orDefault(resp.Message, MsgUserNotFound), nil)
	case http.StatusInternalServerError:
		if IsDuplicateEntry(resp.Message) {
			return newError(op, ErrDuplicateItem, MsgDuplicateItem, nil)
		}
		return newError(op, ErrInternalService, MsgInternalService, fmt.Errorf("status 500: %q", resp.Message))
	default:
		return newError(op, ErrUnexpectedStatus, MsgUnexpected, fmt.Errorf("status %d", resp.StatusCode))
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
