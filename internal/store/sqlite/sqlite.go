// Package sqlite persists transaction documents in a local SQLite file and
// serves them through the store port. Unlike the other backends its
// collection may be written by more than one process; Reload lets an
// external change signal re-publish a user's snapshot to live subscribers.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

type Store struct {
	db *sql.DB

	// mu serializes mutation+publish so snapshot delivery order matches
	// the order writes were applied by this process.
	mu       sync.Mutex
	notifier *store.Notifier
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, notifier: store.NewNotifier()}, nil
}

func (s *Store) Close() error {
	s.notifier.Close()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Create(ctx context.Context, user string, f core.Fields) (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (user_handle, description, amount_cents, tx_type, category, tx_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user, f.Description, f.Amount.Cents, string(f.Type), f.Category, f.Date.UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}
	rowID, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("read insert id: %w", err)
	}
	id := strconv.FormatInt(rowID, 10)
	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"description", f.Description,
		"amount_cents", f.Amount.Cents,
		"type", string(f.Type))
	return id, s.publishLocked(ctx, user)
}

func (s *Store) Update(ctx context.Context, user, id string, f core.Fields) error {
	if err := f.Validate(); err != nil {
		return err
	}
	rowID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return store.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions
		 SET description = ?, amount_cents = ?, tx_type = ?, category = ?, tx_date = ?
		 WHERE id = ? AND user_handle = ?`,
		f.Description, f.Amount.Cents, string(f.Type), f.Category, f.Date.UTC().Format(time.RFC3339),
		rowID, user)
	if err != nil {
		return fmt.Errorf("update transaction %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return s.publishLocked(ctx, user)
}

func (s *Store) Delete(ctx context.Context, user, id string) error {
	rowID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return store.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_handle = ?`, rowID, user)
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return s.publishLocked(ctx, user)
}

func (s *Store) Subscribe(user string, onSnapshot func([]core.Transaction), onError func(error)) (*store.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	initial, err := s.snapshot(context.Background(), user)
	if err != nil {
		return nil, err
	}
	return s.notifier.Subscribe(user, initial, onSnapshot, onError)
}

// Reload re-reads a user's collection and pushes it to live subscribers.
// Called when another actor signals a change it applied directly to the
// database file.
func (s *Store) Reload(ctx context.Context, user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.publishLocked(ctx, user)
}

func (s *Store) publishLocked(ctx context.Context, user string) error {
	snap, err := s.snapshot(ctx, user)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	s.notifier.Publish(user, snap)
	return nil
}

func (s *Store) snapshot(ctx context.Context, user string) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, description, amount_cents, tx_type, category, tx_date
		 FROM transactions
		 WHERE user_handle = ?
		 ORDER BY tx_date DESC, id ASC`, user)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			id      int64
			t       core.Transaction
			typ     string
			dateStr string
		)
		if err := rows.Scan(&id, &t.Description, &t.Amount.Cents, &typ, &t.Category, &dateStr); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.ID = strconv.FormatInt(id, 10)
		t.Type = core.TxType(typ)
		date, err := time.Parse(time.RFC3339, dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", dateStr, err)
		}
		t.Date = date
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}
