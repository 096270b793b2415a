package tracker

import "errors"

// Sentinel kinds for tracking service calls. A non-2xx status is not an
// error at this layer; callers classify Response.StatusCode themselves.
var (
	ErrTransport         = errors.New("tracking service unreachable")
	ErrMalformedResponse = errors.New("malformed tracking service response")
)
