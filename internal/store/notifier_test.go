package store

import (
	"testing"
	"time"

	"fintrack/internal/core"
)

func snap(ids ...string) []core.Transaction {
	out := make([]core.Transaction, len(ids))
	for i, id := range ids {
		out[i] = core.Transaction{ID: id, Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	}
	return out
}

func collect(t *testing.T, ch <-chan []core.Transaction) []core.Transaction {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for snapshot")
		return nil
	}
}

func TestNotifierDeliversInitialThenPublishes(t *testing.T) {
	n := NewNotifier()
	got := make(chan []core.Transaction, 8)
	sub, err := n.Subscribe("u1", snap("a"), func(s []core.Transaction) { got <- s }, func(error) {})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Cancel()

	if s := collect(t, got); len(s) != 1 || s[0].ID != "a" {
		t.Fatalf("initial snapshot = %v", s)
	}

	n.Publish("u1", snap("a", "b"))
	n.Publish("u1", snap("a", "b", "c"))

	if s := collect(t, got); len(s) != 2 {
		t.Fatalf("second snapshot len = %d", len(s))
	}
	if s := collect(t, got); len(s) != 3 {
		t.Fatalf("third snapshot len = %d", len(s))
	}
}

func TestNotifierIsolatesUsers(t *testing.T) {
	n := NewNotifier()
	got := make(chan []core.Transaction, 8)
	sub, err := n.Subscribe("u1", nil, func(s []core.Transaction) { got <- s }, func(error) {})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Cancel()

	collect(t, got) // initial

	n.Publish("u2", snap("x"))
	n.Publish("u1", snap("y"))

	s := collect(t, got)
	if len(s) != 1 || s[0].ID != "y" {
		t.Fatalf("leaked another user's snapshot: %v", s)
	}
}

func TestNotifierCancelStopsCallbacks(t *testing.T) {
	n := NewNotifier()
	got := make(chan []core.Transaction, 8)
	sub, err := n.Subscribe("u1", nil, func(s []core.Transaction) { got <- s }, func(error) {})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	collect(t, got) // initial

	sub.Cancel()
	sub.Cancel() // second cancel is a no-op

	n.Publish("u1", snap("a"))
	select {
	case s := <-got:
		t.Fatalf("snapshot after cancel: %v", s)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestNotifierCloseFailsSubscribers(t *testing.T) {
	n := NewNotifier()
	errs := make(chan error, 1)
	_, err := n.Subscribe("u1", nil, func([]core.Transaction) {}, func(e error) { errs <- e })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	n.Close()

	select {
	case e := <-errs:
		if e != ErrStoreClosed {
			t.Fatalf("err = %v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no error delivered on close")
	}

	if _, err := n.Subscribe("u1", nil, func([]core.Transaction) {}, func(error) {}); err != ErrStoreClosed {
		t.Fatalf("subscribe after close err = %v", err)
	}
}

func TestNotifierLaggingSubscriberFailed(t *testing.T) {
	n := NewNotifier()
	errs := make(chan error, 1)
	block := make(chan struct{})
	sub, err := n.Subscribe("u1", nil, func([]core.Transaction) { <-block }, func(e error) { errs <- e })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Cancel()

	// First delivery blocks inside the callback; overflow the queue behind it.
	for i := 0; i < queueDepth+2; i++ {
		n.Publish("u1", snap("a"))
	}
	close(block)

	select {
	case e := <-errs:
		if e != ErrSubscriptionLagging {
			t.Fatalf("err = %v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("lagging subscriber was not failed")
	}
}

func TestOrderSnapshot(t *testing.T) {
	list := []core.Transaction{
		{ID: "old", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "tie1", Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "tie2", Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "new", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	OrderSnapshot(list)
	want := []string{"new", "tie1", "tie2", "old"}
	for i, w := range want {
		if list[i].ID != w {
			t.Fatalf("slot %d = %s, want %s", i, list[i].ID, w)
		}
	}
}
