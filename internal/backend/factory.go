// Package backend builds the configured transaction store and its
// optional change-event bridge.
package backend

import (
	"context"
	"fmt"

	"fintrack/internal/config"
	"fintrack/internal/events"
	"fintrack/internal/log"
	"fintrack/internal/store"
	"fintrack/internal/store/boltdb"
	"fintrack/internal/store/memory"
	"fintrack/internal/store/sqlite"
)

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
	BoltBackend   BackendType = "bolt"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, BoltBackend:
		return true
	default:
		return false
	}
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Reloader is implemented by stores whose file may be written by other
// processes; Reload re-publishes a user's snapshot from disk.
type Reloader interface {
	Reload(ctx context.Context, user string) error
}

// Result contains the assembled store and its collaborators.
type Result struct {
	// Store is what the shell and the importer write through. When the
	// bridge is enabled it already publishes change events.
	Store store.Store

	// Events is the AMQP client, nil when the bridge is disabled.
	Events *events.Client

	// Reloader is non-nil for backends that can re-read external writes.
	Reloader Reloader

	Cleanup CleanupFunc
}

// Factory assembles backends from application configuration.
type Factory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) *Factory {
	return &Factory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend builds the store named by cfg.DataBackend and, when an
// AMQP URL is configured, wraps it with the change-event publisher.
func (f *Factory) CreateBackend(cfg *config.Config) (*Result, error) {
	backendType := BackendType(cfg.DataBackend)
	if !backendType.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	result, err := f.createStore(backendType, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.EventsEnabled() {
		client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without change events", log.FieldError, err.Error())
		} else {
			f.logger.Info("Initialized AMQP change-event bridge",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
			result.Events = client
			result.Store = NewPublishingStore(result.Store, client, f.logger)
			inner := result.Cleanup
			result.Cleanup = func() error {
				cerr := client.Close()
				if inner != nil {
					if err := inner(); err != nil {
						return err
					}
				}
				return cerr
			}
		}
	}

	return result, nil
}

func (f *Factory) createStore(backendType BackendType, cfg *config.Config) (*Result, error) {
	switch backendType {
	case SQLiteBackend:
		st, err := sqlite.Open(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{Store: st, Reloader: st, Cleanup: st.Close}, nil

	case BoltBackend:
		st, err := boltdb.Open(cfg.BoltDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Bolt store: %w", err)
		}
		f.logger.Info("Initialized Bolt backend", "db_path", cfg.BoltDBPath)
		return &Result{Store: st, Cleanup: st.Close}, nil

	case MemoryBackend:
		st := memory.New()
		f.logger.Info("Initialized memory backend")
		return &Result{Store: st, Cleanup: st.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", backendType)
	}
}
