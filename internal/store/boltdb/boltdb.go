// Package boltdb persists transaction documents in an embedded bbolt file:
// one bucket per user handle, JSON documents keyed by a store-assigned
// sequence number.
package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	bolt "go.etcd.io/bbolt"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

var usersBucketName = []byte("users")

type Store struct {
	db *bolt.DB

	// mu serializes mutation+publish so snapshot delivery order matches
	// the order writes were applied.
	mu       sync.Mutex
	notifier *store.Notifier
}

func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open bolt database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(usersBucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create users bucket: %w", err)
	}
	return &Store{db: db, notifier: store.NewNotifier()}, nil
}

func (s *Store) Close() error {
	s.notifier.Close()
	return s.db.Close()
}

func (s *Store) Create(ctx context.Context, user string, f core.Fields) (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var id string
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.Bucket(usersBucketName).CreateBucketIfNotExists([]byte(user))
		if err != nil {
			return err
		}
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		id = strconv.FormatUint(seq, 10)
		raw, err := json.Marshal(f.Transaction(id))
		if err != nil {
			return err
		}
		return bucket.Put(itob(seq), raw)
	})
	if err != nil {
		return "", fmt.Errorf("create transaction: %w", err)
	}
	return id, s.publishLocked(user)
}

func (s *Store) Update(ctx context.Context, user, id string, f core.Fields) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket, key, err := lookup(tx, user, id)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(f.Transaction(id))
		if err != nil {
			return err
		}
		return bucket.Put(key, raw)
	})
	if err != nil {
		if err == store.ErrNotFound {
			return err
		}
		return fmt.Errorf("update transaction %s: %w", id, err)
	}
	return s.publishLocked(user)
}

func (s *Store) Delete(ctx context.Context, user, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket, key, err := lookup(tx, user, id)
		if err != nil {
			return err
		}
		return bucket.Delete(key)
	})
	if err != nil {
		if err == store.ErrNotFound {
			return err
		}
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	return s.publishLocked(user)
}

func (s *Store) Subscribe(user string, onSnapshot func([]core.Transaction), onError func(error)) (*store.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	initial, err := s.snapshot(user)
	if err != nil {
		return nil, err
	}
	return s.notifier.Subscribe(user, initial, onSnapshot, onError)
}

func (s *Store) publishLocked(user string) error {
	snap, err := s.snapshot(user)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	s.notifier.Publish(user, snap)
	return nil
}

func (s *Store) snapshot(user string) ([]core.Transaction, error) {
	var out []core.Transaction
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(usersBucketName).Bucket([]byte(user))
		if bucket == nil {
			return nil
		}
		// Keys ascend in creation order; OrderSnapshot's stable sort keeps
		// that order among equal dates.
		return bucket.ForEach(func(_, raw []byte) error {
			var t core.Transaction
			if err := json.Unmarshal(raw, &t); err != nil {
				return err
			}
			out = append(out, t)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	store.OrderSnapshot(out)
	return out, nil
}

func lookup(tx *bolt.Tx, user, id string) (*bolt.Bucket, []byte, error) {
	bucket := tx.Bucket(usersBucketName).Bucket([]byte(user))
	if bucket == nil {
		return nil, nil, store.ErrNotFound
	}
	seq, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return nil, nil, store.ErrNotFound
	}
	key := itob(seq)
	if bucket.Get(key) == nil {
		return nil, nil, store.ErrNotFound
	}
	return bucket, key, nil
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
