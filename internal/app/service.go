// Package service provides the session registry behind the HTTP gateway:
// one tracking synchronizer per signed-in user.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/okian/pricetrack/internal/adapters/identity"
	"github.com/okian/pricetrack/internal/domain/display"
	"github.com/okian/pricetrack/internal/domain/inflight"
	"github.com/okian/pricetrack/internal/domain/marketplace"
	"github.com/okian/pricetrack/internal/domain/model"
	"github.com/okian/pricetrack/internal/tracking"
	"github.com/okian/pricetrack/pkg/logger"
	"github.com/okian/pricetrack/pkg/metrics"
)

// Snapshot is what the gateway renders for a user.
type Snapshot struct {
	User    identity.Identity  `json:"user"`
	Items   []display.ItemView `json:"items"`
	Loading bool               `json:"loading"`
	Add     AddStatusView      `json:"add_status"`
}

// AddStatusView is the JSON form of tracking.AddStatus.
type AddStatusView struct {
	State   string `json:"state"`
	Pending string `json:"pending,omitempty"`
	Message string `json:"message,omitempty"`
}

type session struct {
	user   identity.Identity
	syncer *tracking.Synchronizer
	opened time.Time
}

// Service holds the open sessions.
type Service struct {
	mu sync.RWMutex

	backend  tracking.Backend
	gate     inflight.Gate
	sessions map[string]*session

	// Configuration
	maxSessions int
	nameLimit   int
	now         func() time.Time

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithMaxSessions bounds the number of concurrently open sessions.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithNameDisplayLimit sets how many characters of an item name are shown.
func WithNameDisplayLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.nameLimit = n
		}
	}
}

// WithClock sets the time source used for relative ages.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service over the tracking backend.
func New(backend tracking.Backend, opts ...Option) *Service {
	s := &Service{
		backend:     backend,
		sessions:    make(map[string]*session),
		maxSessions: 10_000,
		nameLimit:   100,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start prepares the registry for use.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.gate = inflight.NewInMemoryGate(inflight.WithMaxKeys(s.maxSessions))
	s.started = true

	s.logger.Info(ctx, "session registry started",
		logger.Int("maxSessions", s.maxSessions),
		logger.Int("nameLimit", s.nameLimit),
	)
	return nil
}

// Stop closes every session.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.sessions = make(map[string]*session)
	s.started = false
	metrics.UpdateSessionsActive(0)
	s.logger.Info(context.Background(), "session registry stopped")
}

// Open returns the user's synchronizer, creating it and performing the
// initial fetch on first use. A failed initial fetch is logged and leaves an
// empty collection; the session still opens.
func (s *Service) Open(ctx context.Context, user identity.Identity) (*tracking.Synchronizer, error) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil, ErrNotStarted
	}
	if sess, ok := s.sessions[user.Email]; ok {
		s.mu.Unlock()
		return sess.syncer, nil
	}
	if len(s.sessions) >= s.maxSessions {
		s.mu.Unlock()
		return nil, ErrTooManySessions
	}

	sess := &session{
		user:   user,
		syncer: tracking.New(s.backend,
			tracking.WithGate(s.gate),
			tracking.WithLogger(s.logger.With(logger.String("user", user.Email))),
		),
		opened: s.now(),
	}
	s.sessions[user.Email] = sess
	count := len(s.sessions)
	s.mu.Unlock()

	metrics.UpdateSessionsActive(count)
	s.logger.Info(ctx, "session opened", logger.String("user", user.Email))

	if _, err := sess.syncer.ListItems(ctx, user.Email); err != nil {
		s.logger.Warn(ctx, "initial fetch failed",
			logger.String("user", user.Email),
			logger.Error(err),
		)
	}
	return sess.syncer, nil
}

// Close discards the user's session and its collection. Returns false if
// none was open.
func (s *Service) Close(ctx context.Context, email string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[email]
	delete(s.sessions, email)
	count := len(s.sessions)
	s.mu.Unlock()

	if ok {
		metrics.UpdateSessionsActive(count)
		s.logger.Info(ctx, "session closed",
			logger.String("user", email),
			logger.Duration("age", s.now().Sub(sess.opened)),
		)
	}
	return ok
}

// Snapshot renders the user's current collection, opening the session if
// needed.
func (s *Service) Snapshot(ctx context.Context, user identity.Identity) (Snapshot, error) {
	syncer, err := s.Open(ctx, user)
	if err != nil {
		return Snapshot{}, err
	}
	return s.render(ctx, user, syncer), nil
}

// Refresh refetches the user's collection.
func (s *Service) Refresh(ctx context.Context, user identity.Identity) (Snapshot, error) {
	syncer, err := s.Open(ctx, user)
	if err != nil {
		return Snapshot{}, err
	}
	if _, err := syncer.ListItems(ctx, user.Email); err != nil {
		return Snapshot{}, err
	}
	return s.render(ctx, user, syncer), nil
}

// Add submits rawURL for tracking on the user's behalf.
func (s *Service) Add(ctx context.Context, user identity.Identity, rawURL string) (tracking.AddOutcome, Snapshot, error) {
	syncer, err := s.Open(ctx, user)
	if err != nil {
		return tracking.AddOutcome{}, Snapshot{}, err
	}
	out, err := syncer.AddItem(ctx, rawURL, user.Email)
	return out, s.render(ctx, user, syncer), err
}

// Delete stops tracking an item on the user's behalf.
func (s *Service) Delete(ctx context.Context, user identity.Identity, id model.ItemID) (Snapshot, error) {
	syncer, err := s.Open(ctx, user)
	if err != nil {
		return Snapshot{}, err
	}
	err = syncer.DeleteItem(ctx, id, user.Email)
	return s.render(ctx, user, syncer), err
}

// Normalize canonicalizes a URL without contacting the tracking service.
func (s *Service) Normalize(_ context.Context, raw string) (marketplace.ProductRef, error) {
	ref, err := marketplace.Normalize(raw)
	if err != nil {
		metrics.RecordNormalization("unknown", "error")
		return ref, err
	}
	metrics.RecordNormalization(string(ref.Marketplace), "ok")
	return ref, nil
}

func (s *Service) render(ctx context.Context, user identity.Identity, syncer *tracking.Synchronizer) Snapshot {
	add := syncer.AddStatus()
	return Snapshot{
		User:    user,
		Items:   display.Views(syncer.Items(ctx), s.now(), s.nameLimit),
		Loading: syncer.Loading(ctx, user.Email),
		Add: AddStatusView{
			State:   add.State.String(),
			Pending: add.Pending,
			Message: add.Message,
		},
	}
}

// SessionCount returns the number of open sessions.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Stats describes the registry for the ops endpoints.
type Stats struct {
	Started      bool  `json:"started"`
	MaxSessions  int   `json:"max_sessions"`
	NameLimit    int   `json:"name_limit"`
	Sessions     int   `json:"sessions"`
	InFlight     int64 `json:"in_flight"`
	TrackedItems int   `json:"tracked_items"`
}

// Stats returns a point-in-time view of the registry.
func (s *Service) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		Started:     s.started,
		MaxSessions: s.maxSessions,
		NameLimit:   s.nameLimit,
		Sessions:    len(s.sessions),
	}
	if !s.started {
		return st
	}
	st.InFlight = s.gate.Size()
	for _, sess := range s.sessions {
		st.TrackedItems += sess.syncer.Count(context.Background())
	}
	return st
}
