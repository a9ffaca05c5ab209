package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

func TestBackendType_IsValid(t *testing.T) {
	tests := []struct {
		bt    BackendType
		valid bool
	}{
		{MemoryBackend, true},
		{SQLiteBackend, true},
		{BoltBackend, true},
		{BackendType("sheets"), false},
		{BackendType(""), false},
	}
	for _, tt := range tests {
		if got := tt.bt.IsValid(); got != tt.valid {
			t.Errorf("IsValid(%q) = %v, want %v", tt.bt, got, tt.valid)
		}
	}
}

func TestCreateBackend(t *testing.T) {
	logger := log.New(log.DefaultConfig())
	f := NewFactory(logger)
	tmp := t.TempDir()

	tests := []struct {
		name string
		cfg  config.Config
	}{
		{"memory", config.Config{DataBackend: "memory"}},
		{"sqlite", config.Config{DataBackend: "sqlite", SQLiteDBPath: filepath.Join(tmp, "t.db")}},
		{"bolt", config.Config{DataBackend: "bolt", BoltDBPath: filepath.Join(tmp, "t.bolt")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := f.CreateBackend(&tt.cfg)
			if err != nil {
				t.Fatalf("CreateBackend: %v", err)
			}
			defer result.Cleanup()

			if result.Events != nil {
				t.Error("events client should be nil without AMQP_URL")
			}
			if tt.name == "sqlite" && result.Reloader == nil {
				t.Error("sqlite backend should expose a Reloader")
			}
			if tt.name != "sqlite" && result.Reloader != nil {
				t.Errorf("%s backend should not expose a Reloader", tt.name)
			}

			// Smoke-test a write through the assembled store.
			id, err := result.Store.Create(context.Background(), "u1", core.Fields{
				Description: "probe",
				Amount:      core.Money{Cents: 100},
				Type:        core.Expense,
				Category:    "General",
				Date:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			})
			if err != nil {
				t.Fatalf("create through %s store: %v", tt.name, err)
			}
			if id == "" {
				t.Error("create should return an id")
			}
		})
	}
}

func TestCreateBackend_InvalidType(t *testing.T) {
	f := NewFactory(log.New(log.DefaultConfig()))
	if _, err := f.CreateBackend(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Fatal("expected an error for unknown backend type")
	}
}
