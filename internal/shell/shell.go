// Package shell holds the per-user application state machine.
//
// A Shell owns one live subscription and the authoritative transaction
// list for one anonymous handle. The list only changes when the store
// pushes a snapshot; writes go down through the store and come back as
// snapshot pushes, never as local mutations.
package shell

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

// State names a phase of the shell lifecycle.
type State int

const (
	// StateAuthenticating covers handle acquisition, before the
	// subscription is requested.
	StateAuthenticating State = iota
	// StateSubscribing means the subscription is up but no snapshot has
	// arrived yet.
	StateSubscribing
	// StateReady means at least one snapshot has been applied.
	StateReady
	// StateError is terminal; only a fresh shell leaves it.
	StateError
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateSubscribing:
		return "subscribing"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// lastGeneration numbers shells process-wide so a replacement never
// shares an identity with its predecessor.
var lastGeneration uint64

// Shell is the application state for one user handle.
type Shell struct {
	user       string
	generation uint64
	store      store.Store
	logger     *log.Logger

	mu       sync.Mutex
	state    State
	txs      []core.Transaction
	seq      uint64
	err      error
	notice   string
	sub      *store.Subscription
	closed   bool
	lastSeen time.Time
}

// New builds a shell for user and opens its subscription. The returned
// shell is never nil; a subscription failure leaves it in StateError.
func New(user string, st store.Store, logger *log.Logger) *Shell {
	s := &Shell{
		user:       user,
		generation: atomic.AddUint64(&lastGeneration, 1),
		store:      st,
		logger:     logger,
		state:      StateAuthenticating,
		lastSeen:   time.Now(),
	}
	s.subscribe()
	return s
}

func (s *Shell) subscribe() {
	s.mu.Lock()
	s.state = StateSubscribing
	s.mu.Unlock()

	sub, err := s.store.Subscribe(s.user, s.applySnapshot, s.fail)
	if err != nil {
		s.fail(err)
		return
	}

	s.mu.Lock()
	if s.closed {
		// Closed while Subscribe was in flight.
		s.mu.Unlock()
		sub.Cancel()
		return
	}
	s.sub = sub
	s.mu.Unlock()
}

// applySnapshot is the only place the transaction list changes.
func (s *Shell) applySnapshot(list []core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state == StateError {
		return
	}
	s.txs = list
	s.seq++
	if s.state == StateSubscribing {
		s.state = StateReady
	}
}

func (s *Shell) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state == StateError {
		return
	}
	s.state = StateError
	s.err = err
	s.logger.Error("Subscription failed", log.FieldUser, s.user, log.FieldError, err.Error())
}

// Create validates nothing; callers run ValidateDraft first. A store
// failure is recoverable: it is logged, surfaced as a one-shot notice,
// and leaves the state machine and list untouched. On success the new
// transaction's id is returned.
func (s *Shell) Create(ctx context.Context, f core.Fields) (string, error) {
	var id string
	err := s.dispatch(ctx, log.OpCreate, func() error {
		var werr error
		id, werr = s.store.Create(ctx, s.user, f)
		return werr
	})
	return id, err
}

// Update replaces the fields of an existing transaction.
func (s *Shell) Update(ctx context.Context, id string, f core.Fields) error {
	return s.dispatch(ctx, log.OpUpdate, func() error {
		return s.store.Update(ctx, s.user, id, f)
	})
}

// Delete removes a transaction.
func (s *Shell) Delete(ctx context.Context, id string) error {
	return s.dispatch(ctx, log.OpDelete, func() error {
		return s.store.Delete(ctx, s.user, id)
	})
}

func (s *Shell) dispatch(ctx context.Context, op string, write func() error) error {
	s.mu.Lock()
	if s.closed || s.state == StateError {
		s.mu.Unlock()
		return store.ErrStoreClosed
	}
	s.mu.Unlock()

	if err := write(); err != nil {
		s.logger.ErrorContext(ctx, "Store write failed",
			log.FieldUser, s.user,
			log.FieldOperation, op,
			log.FieldError, err.Error())
		s.mu.Lock()
		if !s.closed {
			s.notice = "The change could not be saved. Please try again."
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

// State reports the current lifecycle phase.
func (s *Shell) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Transactions returns a copy of the current list in delivery order.
func (s *Shell) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.txs))
	copy(out, s.txs)
	return out
}

// Generation reports the shell's process-unique instance number. A
// replacement shell for the same user always gets a fresh one, so cache
// keys built from it cannot match entries left by a predecessor.
func (s *Shell) Generation() uint64 {
	return s.generation
}

// Seq counts applied snapshots; together with Generation it keys
// derived-value caches.
func (s *Shell) Seq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Err returns the terminal error, nil outside StateError.
func (s *Shell) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// TakeNotice returns and clears the pending transient notice.
func (s *Shell) TakeNotice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.notice
	s.notice = ""
	return n
}

// Touch marks the shell as recently used for idle eviction.
func (s *Shell) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
}

// IdleSince reports the last use.
func (s *Shell) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Close cancels the subscription. Safe to call more than once; the
// underlying cancel runs at most one time.
func (s *Shell) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()

	if sub != nil {
		sub.Cancel()
	}
}
