package shell

import (
	"context"
	"sync"
	"time"

	"fintrack/internal/log"
	"fintrack/internal/store"
)

// Manager is the session registry: one shell per active user handle,
// created on first use and evicted after an idle period.
type Manager struct {
	store  store.Store
	idle   time.Duration
	logger *log.Logger

	mu     sync.Mutex
	shells map[string]*Shell
	closed bool
}

func NewManager(st store.Store, idle time.Duration, logger *log.Logger) *Manager {
	return &Manager{
		store:  st,
		idle:   idle,
		logger: logger.WithComponent(log.ComponentShell),
		shells: make(map[string]*Shell),
	}
}

// Get returns the user's shell, creating one on first use.
func (m *Manager) Get(user string) *Shell {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.shells[user]; ok {
		s.Touch()
		return s
	}
	s := New(user, m.store, m.logger)
	if !m.closed {
		m.shells[user] = s
	}
	return s
}

// Reset discards the user's shell and builds a new one. This is the
// only way out of StateError.
func (m *Manager) Reset(user string) *Shell {
	m.mu.Lock()
	old := m.shells[user]
	delete(m.shells, user)
	m.mu.Unlock()

	if old != nil {
		old.Close()
	}
	return m.Get(user)
}

// Sweep closes shells idle longer than the configured period and
// returns how many it evicted.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	var victims []*Shell
	for user, s := range m.shells {
		if now.Sub(s.IdleSince()) > m.idle {
			victims = append(victims, s)
			delete(m.shells, user)
		}
	}
	m.mu.Unlock()

	for _, s := range victims {
		s.Close()
	}
	if len(victims) > 0 {
		m.logger.Info("Evicted idle sessions", "count", len(victims))
	}
	return len(victims)
}

// Run sweeps periodically until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	interval := m.idle / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.Sweep(time.Now())
		}
	}
}

// Close shuts every shell down. Get after Close still returns working
// shells but stops retaining them.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	victims := make([]*Shell, 0, len(m.shells))
	for _, s := range m.shells {
		victims = append(victims, s)
	}
	m.shells = make(map[string]*Shell)
	m.mu.Unlock()

	for _, s := range victims {
		s.Close()
	}
}
