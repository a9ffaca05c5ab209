package memory

import (
	"context"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

func fields(desc string, cents int64, typ core.TxType, cat string, day int) core.Fields {
	return core.Fields{
		Description: desc,
		Amount:      core.Money{Cents: cents},
		Type:        typ,
		Category:    cat,
		Date:        time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
	}
}

func nextSnapshot(t *testing.T, ch <-chan []core.Transaction) []core.Transaction {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for snapshot")
		return nil
	}
}

func TestCreateUpdateDeleteRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()
	defer s.Close()

	snaps := make(chan []core.Transaction, 8)
	sub, err := s.Subscribe("u1", func(list []core.Transaction) { snaps <- list }, func(err error) { t.Errorf("onError: %v", err) })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Cancel()

	if got := nextSnapshot(t, snaps); len(got) != 0 {
		t.Fatalf("initial snapshot not empty: %v", got)
	}

	// Create: next snapshot includes the record with a fresh id.
	f := fields("Groceries", 1234, core.Expense, "Food", 2)
	if _, err := s.Create(ctx, "u1", f); err != nil {
		t.Fatalf("create: %v", err)
	}
	got := nextSnapshot(t, snaps)
	if len(got) != 1 {
		t.Fatalf("after create: %v", got)
	}
	if got[0].ID == "" {
		t.Fatalf("no id assigned")
	}
	if got[0].Fields() != f {
		t.Fatalf("fields mismatch: %+v != %+v", got[0].Fields(), f)
	}
	id := got[0].ID

	// Update: only fields change, id stays.
	f2 := fields("Weekly groceries", 2000, core.Expense, "Food", 3)
	if err := s.Update(ctx, "u1", id, f2); err != nil {
		t.Fatalf("update: %v", err)
	}
	got = nextSnapshot(t, snaps)
	if len(got) != 1 || got[0].ID != id || got[0].Fields() != f2 {
		t.Fatalf("after update: %+v", got)
	}

	// Delete: record absent from the next snapshot.
	if err := s.Delete(ctx, "u1", id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got = nextSnapshot(t, snaps); len(got) != 0 {
		t.Fatalf("after delete: %v", got)
	}
}

func TestUnknownIDErrors(t *testing.T) {
	ctx := context.Background()
	s := New()
	defer s.Close()

	f := fields("x", 100, core.Income, "Salary", 1)
	if err := s.Update(ctx, "u1", "missing", f); err != store.ErrNotFound {
		t.Fatalf("update err = %v", err)
	}
	if err := s.Delete(ctx, "u1", "missing"); err != store.ErrNotFound {
		t.Fatalf("delete err = %v", err)
	}
}

func TestSnapshotOrderedByDateDescending(t *testing.T) {
	ctx := context.Background()
	s := New()
	defer s.Close()

	for day := 1; day <= 3; day++ {
		if _, err := s.Create(ctx, "u1", fields("d", 100, core.Expense, "C", day)); err != nil {
			t.Fatalf("create day %d: %v", day, err)
		}
	}

	snaps := make(chan []core.Transaction, 1)
	sub, err := s.Subscribe("u1", func(list []core.Transaction) { snaps <- list }, func(error) {})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Cancel()

	got := nextSnapshot(t, snaps)
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Date.After(got[i-1].Date) {
			t.Fatalf("snapshot not date-descending: %v", got)
		}
	}
}

func TestUserIsolation(t *testing.T) {
	ctx := context.Background()
	s := New()
	defer s.Close()

	if _, err := s.Create(ctx, "alice", fields("a", 100, core.Expense, "C", 1)); err != nil {
		t.Fatalf("create: %v", err)
	}

	snaps := make(chan []core.Transaction, 1)
	sub, err := s.Subscribe("bob", func(list []core.Transaction) { snaps <- list }, func(error) {})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Cancel()

	if got := nextSnapshot(t, snaps); len(got) != 0 {
		t.Fatalf("bob sees alice's data: %v", got)
	}
}

// A write racing Subscribe must land either in the initial snapshot or
// in a later push; a subscriber must never be left holding a snapshot
// that predates the write with nothing following.
func TestSubscribeConcurrentWithWriteSeesWrite(t *testing.T) {
	ctx := context.Background()

	for i := 0; i < 200; i++ {
		s := New()
		user := "u1"

		done := make(chan struct{})
		go func() {
			defer close(done)
			if _, err := s.Create(ctx, user, fields("race", 100, core.Expense, "C", 1)); err != nil {
				t.Errorf("create: %v", err)
			}
		}()

		snaps := make(chan []core.Transaction, 4)
		sub, err := s.Subscribe(user, func(list []core.Transaction) { snaps <- list }, func(error) {})
		if err != nil {
			t.Fatalf("subscribe: %v", err)
		}
		<-done

		got := nextSnapshot(t, snaps)
		if len(got) == 0 {
			got = nextSnapshot(t, snaps)
		}
		if len(got) != 1 {
			t.Fatalf("iteration %d: subscriber never saw the concurrent write: %v", i, got)
		}

		sub.Cancel()
		s.Close()
	}
}

func TestCreateRejectsInvalidFields(t *testing.T) {
	s := New()
	defer s.Close()
	bad := core.Fields{Description: "", Amount: core.Money{Cents: 0}}
	if _, err := s.Create(context.Background(), "u1", bad); err == nil {
		t.Fatalf("expected validation error")
	}
}
