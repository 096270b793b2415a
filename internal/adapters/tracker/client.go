// Package tracker is the HTTP client of the remote price tracking service.
package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/okian/pricetrack/internal/domain/marketplace"
	"github.com/okian/pricetrack/internal/domain/model"
	"github.com/okian/pricetrack/pkg/logger"
	"github.com/okian/pricetrack/pkg/metrics"
)

// Endpoint paths relative to the service base URL.
const (
	PathListItems    = "/get_tracked_items"
	PathAmazonSubmit = "/amazon_validate_and_scrape"
	PathEbaySubmit   = "/ebay_validate_and_scrape"
	PathDeleteItem   = "/delete_tracked_item"
)

const (
	headerRequestID  = "X-Request-ID"
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "pricetrack/1.0"
)

// SubmitRequest is the body of both marketplace submit endpoints.
type SubmitRequest struct {
	URL   string `json:"url"`
	Email string `json:"user_emailId"`
}

// DeleteRequest is the body of the delete endpoint.
type DeleteRequest struct {
	ItemID model.WireID `json:"item_id"`
	Email  string       `json:"user_emailId"`
}

// Response is the status and optional error text of a mutating call.
type Response struct {
	StatusCode int
	// Message is the body's "error" (or "message") field, if any.
	Message string
}

// OK reports a 2xx status.
func (r Response) OK() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// ListResponse is the result of fetching a user's tracked items.
type ListResponse struct {
	Response
	Items []model.TrackedItem
}

type listBody struct {
	Items *[]model.TrackedItem `json:"items"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Client talks to the tracking service. It is safe for concurrent use.
type Client struct {
	http      *resty.Client
	log       logger.Logger
	timeout   time.Duration
	userAgent string
}

// New creates a client rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		log:       logger.Nop(),
		timeout:   defaultTimeout,
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.http = resty.New().
		SetBaseURL(baseURL).
		SetHeader("User-Agent", c.userAgent).
		SetHeader("Accept", "application/json").
		SetTimeout(c.timeout)

	c.http.OnBeforeRequest(c.onBeforeRequest)
	c.http.OnAfterResponse(c.onAfterResponse)
	c.http.OnError(c.onError)

	return c
}

func (c *Client) onBeforeRequest(_ *resty.Client, req *resty.Request) error {
	if req.Header.Get(headerRequestID) == "" {
		req.SetHeader(headerRequestID, uuid.NewString())
	}
	return nil
}

func (c *Client) onAfterResponse(_ *resty.Client, resp *resty.Response) error {
	endpoint := endpointOf(resp.Request.URL)
	metrics.RecordTrackerRequest(endpoint, strconv.Itoa(resp.StatusCode()), float64(resp.Time().Milliseconds()))
	c.log.Debug(resp.Request.Context(), "tracking service call",
		logger.String("endpoint", endpoint),
		logger.String("method", resp.Request.Method),
		logger.Int("status", resp.StatusCode()),
		logger.Duration("took", resp.Time()),
		logger.String("request_id", resp.Request.Header.Get(headerRequestID)),
	)
	return nil
}

func (c *Client) onError(req *resty.Request, err error) {
	endpoint := endpointOf(req.URL)
	metrics.RecordTrackerRequest(endpoint, "error", 0)
	c.log.Warn(req.Context(), "tracking service call failed",
		logger.String("endpoint", endpoint),
		logger.String("method", req.Method),
		logger.String("request_id", req.Header.Get(headerRequestID)),
		logger.Error(err),
	)
}

// endpointOf reduces a request URL to its last path segment, which keeps the
// metric label set bounded regardless of the base URL.
func endpointOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return "unknown"
	}
	return path.Base(u.Path)
}

// ListItems fetches the user's tracked items in server order.
// A non-200 status is returned in the response with a nil error. A 200 body
// without an items array fails with ErrMalformedResponse.
func (c *Client) ListItems(ctx context.Context, email string) (ListResponse, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("email_id", email).
		Get(PathListItems)
	if err != nil {
		return ListResponse{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	out := ListResponse{Response: Response{StatusCode: resp.StatusCode()}}
	if resp.StatusCode() != http.StatusOK {
		out.Message = errorMessage(resp.Body())
		return out, nil
	}

	var body listBody
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return out, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if body.Items == nil {
		return out, fmt.Errorf("%w: missing items", ErrMalformedResponse)
	}
	out.Items = *body.Items
	return out, nil
}

// Submit asks the service to validate, scrape and start tracking a canonical
// product URL on the given marketplace's route.
func (c *Client) Submit(ctx context.Context, mp marketplace.Marketplace, canonicalURL, email string) (Response, error) {
	route, err := submitPath(mp)
	if err != nil {
		return Response{}, err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(SubmitRequest{URL: canonicalURL, Email: email}).
		Post(route)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return Response{StatusCode: resp.StatusCode(), Message: errorMessage(resp.Body())}, nil
}

// Delete asks the service to stop tracking an item. id is sent in the JSON
// form the service listed it in.
func (c *Client) Delete(ctx context.Context, id model.WireID, email string) (Response, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(DeleteRequest{ItemID: id, Email: email}).
		Delete(PathDeleteItem)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return Response{StatusCode: resp.StatusCode(), Message: errorMessage(resp.Body())}, nil
}

func submitPath(mp marketplace.Marketplace) (string, error) {
	switch mp {
	case marketplace.Amazon:
		return PathAmazonSubmit, nil
	case marketplace.Ebay:
		return PathEbaySubmit, nil
	default:
		return "", fmt.Errorf("%w: %s", marketplace.ErrUnsupportedMarketplace, mp)
	}
}

// errorMessage extracts the error text of a response body. Bodies that are
// not JSON objects yield "".
func errorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	if eb.Error != "" {
		return eb.Error
	}
	return eb.Message
}
