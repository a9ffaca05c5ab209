// Package memory provides the in-memory transaction store backend: the
// default for local runs and the double the shell and HTTP tests run on.
package memory

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

type Store struct {
	mu       sync.Mutex
	seq      int64
	docs     map[string][]core.Transaction // per user, creation order
	notifier *store.Notifier
}

func New() *Store {
	return &Store{
		docs:     make(map[string][]core.Transaction),
		notifier: store.NewNotifier(),
	}
}

// Create stores a new record under a synthetic id and pushes a fresh
// snapshot to the user's subscribers.
func (s *Store) Create(_ context.Context, user string, f core.Fields) (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	id := fmt.Sprintf("mem:%d", s.seq)
	s.docs[user] = append(s.docs[user], f.Transaction(id))
	s.publishLocked(user)
	return id, nil
}

// Update replaces all mutable fields of the identified record.
func (s *Store) Update(_ context.Context, user, id string, f core.Fields) error {
	if err := f.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.docs[user] {
		if t.ID == id {
			s.docs[user][i] = f.Transaction(id)
			s.publishLocked(user)
			return nil
		}
	}
	return store.ErrNotFound
}

// Delete removes the identified record.
func (s *Store) Delete(_ context.Context, user, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.docs[user]
	for i, t := range list {
		if t.ID == id {
			s.docs[user] = append(list[:i:i], list[i+1:]...)
			s.publishLocked(user)
			return nil
		}
	}
	return store.ErrNotFound
}

// Subscribe opens a live channel seeded with the current ordered list.
// s.mu stays held through registration so no write can slip between the
// snapshot and the subscriber becoming visible to Publish.
func (s *Store) Subscribe(user string, onSnapshot func([]core.Transaction), onError func(error)) (*store.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notifier.Subscribe(user, s.snapshotLocked(user), onSnapshot, onError)
}

// Close fails all open subscriptions.
func (s *Store) Close() error {
	s.notifier.Close()
	return nil
}

func (s *Store) publishLocked(user string) {
	s.notifier.Publish(user, s.snapshotLocked(user))
}

func (s *Store) snapshotLocked(user string) []core.Transaction {
	out := append([]core.Transaction(nil), s.docs[user]...)
	store.OrderSnapshot(out)
	return out
}
