// Package tracking keeps a user's tracked-item collection in step with the
// remote tracking service.
package tracking

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/okian/pricetrack/internal/adapters/repository"
	"github.com/okian/pricetrack/internal/adapters/tracker"
	"github.com/okian/pricetrack/internal/domain/inflight"
	"github.com/okian/pricetrack/internal/domain/marketplace"
	"github.com/okian/pricetrack/internal/domain/model"
	"github.com/okian/pricetrack/pkg/logger"
	"github.com/okian/pricetrack/pkg/metrics"
)

// Backend is the subset of the tracking service the synchronizer needs.
type Backend interface {
	ListItems(ctx context.Context, email string) (tracker.ListResponse, error)
	Submit(ctx context.Context, mp marketplace.Marketplace, canonicalURL, email string) (tracker.Response, error)
	Delete(ctx context.Context, id model.WireID, email string) (tracker.Response, error)
}

// AddState is the state of the add-item flow.
type AddState int

const (
	AddIdle AddState = iota
	AddSubmitting
	AddSucceeded
	AddRejected
	AddFailed
)

func (s AddState) String() string {
	switch s {
	case AddIdle:
		return "idle"
	case AddSubmitting:
		return "submitting"
	case AddSucceeded:
		return "succeeded"
	case AddRejected:
		return "rejected"
	case AddFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// AddStatus is a snapshot of the add-item flow. Pending holds the raw input
// while submitting and after a failure; it is cleared on success.
type AddStatus struct {
	State   AddState
	Pending string
	Message string
}

// AddOutcome describes a successful add. RefreshErr is set when the
// follow-up refetch failed; the add itself still stands.
type AddOutcome struct {
	Ref        marketplace.ProductRef
	Message    string
	RefreshErr error
}

// Synchronizer owns one user's displayed collection and serializes the
// operations that change it.
type Synchronizer struct {
	backend Backend
	store   repository.Store
	gate    inflight.Gate
	logger  logger.Logger

	mu  sync.Mutex
	add AddStatus
}

// New constructs a Synchronizer over backend.
func New(backend Backend, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		backend: backend,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.gate == nil {
		s.gate = inflight.NewInMemoryGate()
	}
	return s
}

// Items returns a copy of the collection in server order.
func (s *Synchronizer) Items(ctx context.Context) []model.TrackedItem {
	return s.store.Snapshot(ctx)
}

// Count returns the number of items in the collection.
func (s *Synchronizer) Count(ctx context.Context) int {
	return s.store.Len(ctx)
}

// Loading reports whether an operation for email is in flight.
func (s *Synchronizer) Loading(ctx context.Context, email string) bool {
	return s.gate.Active(ctx, email)
}

// AddStatus returns the current add-flow state.
func (s *Synchronizer) AddStatus() AddStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add
}

func (s *Synchronizer) setAdd(state AddState, pending, msg string) {
	s.mu.Lock()
	s.add = AddStatus{State: state, Pending: pending, Message: msg}
	s.mu.Unlock()
}

// begin acquires the single-flight gate for email. The returned release must
// be deferred by the caller so the flag clears on every exit path.
func (s *Synchronizer) begin(ctx context.Context, email string) (func(), error) {
	if !s.gate.Acquire(ctx, email) {
		metrics.RecordBusyRejection()
		return nil, ErrBusy
	}
	return func() { s.gate.Release(ctx, email) }, nil
}

// ListItems replaces the collection with the service's current view.
// On any failure the collection is left as it was.
func (s *Synchronizer) ListItems(ctx context.Context, email string) ([]model.TrackedItem, error) {
	release, err := s.begin(ctx, email)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.refresh(ctx, email); err != nil {
		return nil, err
	}
	return s.store.Snapshot(ctx), nil
}

// refresh fetches and replaces the collection. Callers hold the gate.
func (s *Synchronizer) refresh(ctx context.Context, email string) (err error) {
	const op = "list"
	defer func() { metrics.RecordListRefresh(outcomeLabel(err)) }()

	if email == "" {
		return newError(op, ErrMissingIdentity, MsgMissingIdentity, nil)
	}

	resp, err := s.backend.ListItems(ctx, email)
	if err != nil {
		s.logger.Warn(ctx, "fetch tracked items failed", logger.Error(err))
		return newError(op, ErrTransport, MsgListFailed, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return newError(op, ErrUserNotFound, orDefault(resp.Message, MsgUserNotFound), nil)
	case resp.StatusCode != http.StatusOK:
		s.logger.Warn(ctx, "fetch tracked items rejected",
			logger.Int("status", resp.StatusCode),
			logger.String("service_error", resp.Message),
		)
		return newError(op, ErrUnexpectedStatus, MsgListFailed, nil)
	}

	s.store.Replace(ctx, resp.Items)
	s.logger.Debug(ctx, "tracked items refreshed", logger.Int("count", len(resp.Items)))
	return nil
}

// AddItem canonicalizes rawURL and asks the service to track it. On
// acceptance the collection is refetched. Every failure leaves the
// collection untouched.
func (s *Synchronizer) AddItem(ctx context.Context, rawURL, email string) (out AddOutcome, err error) {
	const op = "add"

	release, err := s.begin(ctx, email)
	if err != nil {
		return AddOutcome{}, err
	}
	defer release()

	mpLabel := "unknown"
	defer func() { metrics.RecordAddOutcome(mpLabel, outcomeLabel(err)) }()

	s.setAdd(AddSubmitting, rawURL, "")

	if email == "" {
		err = newError(op, ErrMissingIdentity, MsgMissingIdentity, nil)
		s.setAdd(AddRejected, rawURL, MsgMissingIdentity)
		return AddOutcome{}, err
	}

	ref, err := marketplace.Normalize(rawURL)
	if err != nil {
		metrics.RecordNormalization("unknown", "error")
		s.setAdd(AddRejected, rawURL, UserMessage(err))
		return AddOutcome{}, err
	}
	mpLabel = string(ref.Marketplace)
	metrics.RecordNormalization(mpLabel, "ok")

	resp, err := s.backend.Submit(ctx, ref.Marketplace, ref.CanonicalURL, email)
	if err != nil {
		s.logger.Warn(ctx, "submit failed", logger.String("url", ref.CanonicalURL), logger.Error(err))
		err = newError(op, ErrTransport, MsgSubmitFailed, err)
		s.setAdd(AddFailed, rawURL, MsgSubmitFailed)
		return AddOutcome{}, err
	}

	if err = classifySubmission(ref.Marketplace, resp); err != nil {
		s.logger.Warn(ctx, "submit rejected",
			logger.String("url", ref.CanonicalURL),
			logger.Int("status", resp.StatusCode),
			logger.String("service_error", resp.Message),
		)
		s.setAdd(addStateFor(err), rawURL, UserMessage(err))
		return AddOutcome{}, err
	}

	s.setAdd(AddSucceeded, "", MsgAdded)
	out = AddOutcome{Ref: ref, Message: MsgAdded}

	if rerr := s.refresh(ctx, email); rerr != nil {
		s.logger.Warn(ctx, "refresh after add failed", logger.Error(rerr))
		out.RefreshErr = rerr
	}
	return out, nil
}

// addStateFor splits classified failures into user-correctable rejections
// and service failures.
func addStateFor(err error) AddState {
	switch outcomeLabel(err) {
	case "server_validation", "user_not_found", "duplicate", "invalid_url", "missing_identity":
		return AddRejected
	default:
		return AddFailed
	}
}

// DeleteItem asks the service to stop tracking id and, on a 2xx, removes the
// matching entry locally without refetching. The id is sent back in the JSON
// form the service listed it in.
func (s *Synchronizer) DeleteItem(ctx context.Context, id model.ItemID, email string) (err error) {
	const op = "delete"

	release, err := s.begin(ctx, email)
	if err != nil {
		return err
	}
	defer release()
	defer func() { metrics.RecordDelete(outcomeLabel(err)) }()

	if email == "" {
		return newError(op, ErrMissingIdentity, MsgMissingIdentity, nil)
	}

	wire := model.GuessWireID(id)
	it, getErr := s.store.Get(ctx, id)
	switch {
	case getErr == nil:
		wire = it.Wire()
	case errors.Is(getErr, repository.ErrNotFound):
		s.logger.Debug(ctx, "deleting item not in collection", logger.String("item_id", string(id)))
	}

	resp, err := s.backend.Delete(ctx, wire, email)
	if err != nil {
		s.logger.Warn(ctx, "delete failed", logger.String("item_id", string(id)), logger.Error(err))
		return newError(op, ErrTransport, MsgDeleteFailed, err)
	}
	if !resp.OK() {
		s.logger.Warn(ctx, "delete rejected",
			logger.String("item_id", string(id)),
			logger.Int("status", resp.StatusCode),
		)
		return newError(op, ErrDeleteRejected, MsgDeleteFailed, nil)
	}

	s.store.Remove(ctx, id)
	return nil
}
