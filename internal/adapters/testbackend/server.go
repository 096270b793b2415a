// Package testbackend is an in-memory stand-in for the remote price tracking
// service. It serves the same four endpoints and reproduces the service's
// status codes and error texts, for tests and local development.
package testbackend

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/okian/pricetrack/internal/adapters/tracker"
	"github.com/okian/pricetrack/internal/domain/model"
	"github.com/okian/pricetrack/pkg/logger"
)

// Price range for freshly scraped items, in cents.
const (
	minPriceCents   = 500
	priceRangeCents = 49_500
)

var (
	asinPath    = regexp.MustCompile(`^/dp/([A-Z0-9]{10})$`)
	ebayItemRef = regexp.MustCompile(`/itm/(\d+)`)
)

type account struct {
	items []model.TrackedItem
}

type failure struct {
	status  int
	message string
}

// Server is the fake tracking service. It is safe for concurrent use.
type Server struct {
	mu           sync.Mutex
	users        map[string]*account
	nextID       int64
	autoRegister bool
	now          func() time.Time
	failNext     map[string]failure
	log          logger.Logger
}

// New creates an empty fake service.
func New(opts ...Option) *Server {
	s := &Server{
		users:    make(map[string]*account),
		now:      time.Now,
		failNext: make(map[string]failure),
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetLogger sets the request logger.
func (s *Server) SetLogger(l logger.Logger) {
	if l != nil {
		s.log = l
	}
}

// AddUser registers email.
func (s *Server) AddUser(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[email]; !ok {
		s.users[email] = &account{}
	}
}

// Items returns a copy of email's tracked items.
func (s *Server) Items(email string) []model.TrackedItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.users[email]
	if !ok {
		return nil
	}
	out := make([]model.TrackedItem, len(acct.items))
	copy(out, acct.items)
	return out
}

// SetPrice records a new observed price for an item, widening its
// historical range and touching last_checked. Returns false if the item is
// unknown.
func (s *Server) SetPrice(email string, id model.ItemID, price decimal.Decimal) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.users[email]
	if !ok {
		return false
	}
	for i := range acct.items {
		it := &acct.items[i]
		if it.ID != id {
			continue
		}
		it.CurrentPrice = price
		it.LowestPrice = decimal.Min(it.LowestPrice, price)
		it.HighestPrice = decimal.Max(it.HighestPrice, price)
		it.LastChecked = model.At(s.now().UTC())
		return true
	}
	return false
}

// FailNext makes the next request to path answer status with an error body.
// An empty message sends an empty JSON object.
func (s *Server) FailNext(path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext[path] = failure{status: status, message: message}
}

// Handler returns the HTTP handler serving the tracking endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+tracker.PathListItems, s.handleList)
	mux.HandleFunc("POST "+tracker.PathAmazonSubmit, s.handleSubmit(validateAmazon))
	mux.HandleFunc("POST "+tracker.PathEbaySubmit, s.handleSubmit(validateEbay))
	mux.HandleFunc("DELETE "+tracker.PathDeleteItem, s.handleDelete)
	return mux
}

// injected consumes a queued failure for path, writing it if present.
func (s *Server) injected(w http.ResponseWriter, path string) bool {
	s.mu.Lock()
	f, ok := s.failNext[path]
	delete(s.failNext, path)
	s.mu.Unlock()
	if !ok {
		return false
	}
	if f.message == "" {
		writeJSON(w, f.status, map[string]string{})
	} else {
		writeError(w, f.status, f.message)
	}
	return true
}

// account returns email's account, registering it when auto-registration
// is on. Callers hold s.mu.
func (s *Server) account(email string) (*account, bool) {
	acct, ok := s.users[email]
	if !ok && s.autoRegister && email != "" {
		acct = &account{}
		s.users[email] = acct
		ok = true
	}
	return acct, ok
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if s.injected(w, tracker.PathListItems) {
		return
	}
	email := r.URL.Query().Get("email_id")

	s.mu.Lock()
	acct, ok := s.account(email)
	var items []wireItem
	if ok {
		items = make([]wireItem, 0, len(acct.items))
		for _, it := range acct.items {
			items = append(items, toWire(it))
		}
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

type validator func(u *url.URL) (name string, ok bool)

func validateAmazon(u *url.URL) (string, bool) {
	if !strings.Contains(strings.ToLower(u.Hostname()), "amazon") {
		return "", false
	}
	m := asinPath.FindStringSubmatch(u.Path)
	if m == nil {
		return "", false
	}
	return "Amazon product " + m[1], true
}

func validateEbay(u *url.URL) (string, bool) {
	if !strings.Contains(strings.ToLower(u.Hostname()), "ebay") {
		return "", false
	}
	if m := ebayItemRef.FindStringSubmatch(u.Path); m != nil {
		return "eBay listing " + m[1], true
	}
	return "eBay listing", true
}

func (s *Server) handleSubmit(validate validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.injected(w, r.URL.Path) {
			return
		}

		var req tracker.SubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		u, err := url.Parse(req.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			writeError(w, http.StatusBadRequest, "Invalid URL")
			return
		}
		name, ok := validate(u)
		if !ok {
			writeError(w, http.StatusBadRequest, "URL does not point to a supported product page")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		acct, ok := s.account(req.Email)
		if !ok {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		for _, it := range acct.items {
			if it.URL == req.URL {
				writeError(w, http.StatusInternalServerError,
					fmt.Sprintf("Duplicate entry '%s-%s' for key 'user_url'", req.Email, req.URL))
				return
			}
		}

		s.nextID++
		price := scrapePrice()
		it := model.TrackedItem{
			ID:           model.ItemID(strconv.FormatInt(s.nextID, 10)),
			Name:         name,
			URL:          req.URL,
			CurrentPrice: price,
			LowestPrice:  price,
			HighestPrice: price,
			LastChecked:  model.At(s.now().UTC()),
		}
		acct.items = append(acct.items, it)
		s.log.Debug(r.Context(), "item tracked", logger.String("email", req.Email), logger.String("url", req.URL))

		writeJSON(w, http.StatusOK, map[string]any{"message": "Item added", "item": toWire(it)})
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if s.injected(w, tracker.PathDeleteItem) {
		return
	}

	var req tracker.DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.account(req.Email)
	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	for i, it := range acct.items {
		if it.ID == req.ItemID.ID {
			acct.items = append(acct.items[:i:i], acct.items[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Item deleted"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Item not found")
}

// scrapePrice simulates a freshly scraped price between $5.00 and $500.00.
func scrapePrice() decimal.Decimal {
	n, err := rand.Int(rand.Reader, big.NewInt(priceRangeCents))
	if err != nil {
		return decimal.New(minPriceCents, -2)
	}
	return decimal.New(minPriceCents+n.Int64(), -2)
}

// wireItem mirrors the service's JSON, where prices are bare numbers.
type wireItem struct {
	ID           model.WireID    `json:"id"`
	Name         string          `json:"item_name"`
	URL          string          `json:"url"`
	Price        json.Number     `json:"price"`
	LowestPrice  json.Number     `json:"lowest_price"`
	HighestPrice json.Number     `json:"highest_price"`
	LastChecked  model.Timestamp `json:"last_checked"`
}

func toWire(it model.TrackedItem) wireItem {
	return wireItem{
		ID:           model.WireID{ID: it.ID},
		Name:         it.Name,
		URL:          it.URL,
		Price:        json.Number(it.CurrentPrice.String()),
		LowestPrice:  json.Number(it.LowestPrice.String()),
		HighestPrice: json.Number(it.HighestPrice.String()),
		LastChecked:  it.LastChecked,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Serve runs the fake service on addr until ctx is done.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("testbackend: listen %s: %w", addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener runs the fake service on ln until ctx is done.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
