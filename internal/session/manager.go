package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/couchcryptid/drone-emergency-dashboard/internal/observability"
	"github.com/google/uuid"
)

// Manager is the registry of open sessions.
type Manager struct {
	reports Reports
	loader  *DetailLoader
	opts    Options
	logger  *slog.Logger
	metrics *observability.Metrics

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates an empty registry. Every session it opens shares loader
// and opts.
func NewManager(reports Reports, loader *DetailLoader, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Manager {
	return &Manager{
		reports:  reports,
		loader:   loader,
		opts:     opts,
		logger:   logger,
		metrics:  metrics,
		sessions: make(map[string]*Session),
	}
}

// Open starts a new session with an initial board already assembled.
func (m *Manager) Open() (*Session, error) {
	s, err := newSession(uuid.NewString(), m.reports, m.loader, m.opts, m.logger, m.metrics)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.metrics.SessionsActive.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	m.logger.Info("session opened", "session_id", s.ID())
	return s, nil
}

// Get returns the open session with the given id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, ErrSessionNotFound)
	}
	return s, nil
}

// Close removes and closes one session.
func (m *Manager) Close(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
		m.metrics.SessionsActive.Set(float64(len(m.sessions)))
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("session %q: %w", id, ErrSessionNotFound)
	}
	m.logger.Info("session closed", "session_id", id)
	return s.Close(ctx)
}

// CloseAll closes every open session, used on shutdown.
func (m *Manager) CloseAll(ctx context.Context) error {
	m.mu.Lock()
	open := m.sessions
	m.sessions = make(map[string]*Session)
	m.metrics.SessionsActive.Set(0)
	m.mu.Unlock()

	var errs []error
	for _, s := range open {
		if err := s.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
