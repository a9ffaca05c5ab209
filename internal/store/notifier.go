package store

import (
	"sync"

	"fintrack/internal/core"
)

// queueDepth bounds how many undelivered snapshots a subscriber may hold.
// With whole-list pushes at personal-use volumes this is generous; hitting
// it means the consumer stopped draining and the subscription is failed
// rather than reordered or coalesced.
const queueDepth = 64

// Notifier fans snapshots out to per-user subscriptions in publish order.
// Backends embed one and call Publish under their write lock so that
// delivery order matches the order writes were applied.
type Notifier struct {
	mu     sync.Mutex
	subs   map[string]map[*Subscription]struct{}
	closed bool
}

// Subscription is a live channel handle. All callbacks run on a single
// delivery goroutine: snapshots arrive in publish order, onError fires at
// most once and is the last callback, and nothing fires after Cancel.
type Subscription struct {
	user  string
	queue chan []core.Transaction
	done  chan struct{}
	owner *Notifier

	// guarded by owner.mu
	detached    bool
	terminalErr error
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[string]map[*Subscription]struct{})}
}

// Subscribe registers a subscriber and queues the initial snapshot before
// any later publish can be observed.
func (n *Notifier) Subscribe(user string, initial []core.Transaction, onSnapshot func([]core.Transaction), onError func(error)) (*Subscription, error) {
	s := &Subscription{
		user:  user,
		queue: make(chan []core.Transaction, queueDepth),
		done:  make(chan struct{}),
		owner: n,
	}

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil, ErrStoreClosed
	}
	if n.subs[user] == nil {
		n.subs[user] = make(map[*Subscription]struct{})
	}
	n.subs[user][s] = struct{}{}
	s.queue <- initial
	n.mu.Unlock()

	go s.deliver(onSnapshot, onError)
	return s, nil
}

// Publish queues a snapshot for every subscriber of the user. A subscriber
// whose queue is full is failed and dropped; the others are unaffected.
func (n *Notifier) Publish(user string, snapshot []core.Transaction) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for s := range n.subs[user] {
		select {
		case s.queue <- snapshot:
		default:
			n.detachLocked(s, ErrSubscriptionLagging)
		}
	}
}

// Close fails every open subscription and rejects future ones. Used on
// backend shutdown.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	for _, set := range n.subs {
		for s := range set {
			n.detachLocked(s, ErrStoreClosed)
		}
	}
}

// Cancel detaches the subscription. The first call wins; once it returns no
// further callbacks fire. Safe to call again as a no-op.
func (s *Subscription) Cancel() {
	s.owner.mu.Lock()
	s.owner.detachLocked(s, nil)
	s.owner.mu.Unlock()
}

// detachLocked removes the subscription from the fan-out. With a non-nil
// err the queue is closed so the delivery goroutine drains what was already
// ordered and then reports the failure; with nil err delivery stops
// immediately. Callers hold n.mu, which also serializes it against Publish
// so closing the queue cannot race a send.
func (n *Notifier) detachLocked(s *Subscription, err error) {
	if s.detached {
		return
	}
	s.detached = true
	if set, ok := n.subs[s.user]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(n.subs, s.user)
		}
	}
	if err != nil {
		s.terminalErr = err
		close(s.queue)
	} else {
		close(s.done)
	}
}

func (s *Subscription) deliver(onSnapshot func([]core.Transaction), onError func(error)) {
	for {
		select {
		case <-s.done:
			return
		case snap, ok := <-s.queue:
			if !ok {
				if s.terminalErr != nil {
					onError(s.terminalErr)
				}
				return
			}
			// Re-check cancellation so a Cancel that raced the receive
			// suppresses the callback.
			select {
			case <-s.done:
				return
			default:
			}
			onSnapshot(snap)
		}
	}
}
