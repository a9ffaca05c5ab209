// Package store defines the transaction store port the shell talks to and
// the snapshot fan-out shared by its backends.
//
// Every operation is scoped to an opaque user handle: the per-user
// collection is the unit of isolation. Writes return at most the new id;
// the resulting state reaches the UI through the next snapshot pushed on
// the live subscription.
package store

import (
	"context"
	"errors"
	"sort"

	"fintrack/internal/core"
)

var (
	// ErrNotFound is returned by Update and Delete for an unknown id.
	ErrNotFound = errors.New("transaction not found")

	// ErrSubscriptionLagging terminates a subscription whose consumer fell
	// too far behind to keep the delivery order intact.
	ErrSubscriptionLagging = errors.New("subscription consumer lagging")

	// ErrStoreClosed terminates subscriptions when a backend shuts down.
	ErrStoreClosed = errors.New("store closed")
)

// Store is the remote transaction store port.
//
// Subscribe opens a live channel for one user: onSnapshot is invoked once
// immediately with the current ordered list and again after every
// subsequent change by any actor, in the order the store applied the
// writes. onError is invoked at most once on channel failure; the channel
// does not auto-retry. Cancel on the returned Subscription detaches the
// channel with no further callbacks and is safe to call exactly once per
// exit path.
type Store interface {
	Create(ctx context.Context, user string, f core.Fields) (string, error)
	Update(ctx context.Context, user, id string, f core.Fields) error
	Delete(ctx context.Context, user, id string) error
	Subscribe(user string, onSnapshot func([]core.Transaction), onError func(error)) (*Subscription, error)
}

// OrderSnapshot sorts a snapshot the way the store level orders it: by date
// descending, ties keeping their creation order. Backends call this on a
// creation-ordered slice before publishing.
func OrderSnapshot(list []core.Transaction) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Date.After(list[j].Date)
	})
}
