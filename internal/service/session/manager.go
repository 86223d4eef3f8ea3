package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultIdleTimeout is how long a hosted session survives without being used.
const DefaultIdleTimeout = 30 * time.Minute

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithIdleTimeout sets how long a session may go unused before it is evicted.
// A non-positive value keeps DefaultIdleTimeout.
func WithIdleTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.idleTimeout = d
		}
	}
}

// WithManagerClock replaces the wall clock used for idle tracking.
func WithManagerClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

type hosted struct {
	ctrl     *Controller
	lastUsed time.Time
}

// Manager hosts concurrent sessions over one card source. Sessions that go
// unused for the idle timeout are evicted, whatever their state.
type Manager struct {
	source      CardSource
	logger      *slog.Logger
	idleTimeout time.Duration
	now         func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*hosted
}

// NewManager creates an empty Manager.
func NewManager(source CardSource, log *slog.Logger, opts ...ManagerOption) *Manager {
	if source == nil {
		panic("card source cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	m := &Manager{
		source:      source,
		logger:      log,
		idleTimeout: DefaultIdleTimeout,
		now:         time.Now,
		sessions:    make(map[uuid.UUID]*hosted),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create registers a new idle session and returns its ID. Expired sessions
// are evicted first.
func (m *Manager) Create() (uuid.UUID, *Controller) {
	id := uuid.New()
	ctrl := NewController(m.source, m.logger.With(slog.String("session_id", id.String())))

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.evictLocked(now)
	m.sessions[id] = &hosted{ctrl: ctrl, lastUsed: now}
	return id, ctrl
}

// Get returns the session with id and marks it as used. An expired session
// is evicted and reported as ErrSessionNotFound.
func (m *Manager) Get(id uuid.UUID) (*Controller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	now := m.now()
	if m.expired(h, now) {
		delete(m.sessions, id)
		m.logger.Info("session expired", slog.String("session_id", id.String()))
		return nil, ErrSessionNotFound
	}
	h.lastUsed = now
	return h.ctrl, nil
}

// Delete abandons a session. Grades it already applied are kept.
func (m *Manager) Delete(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Sweep evicts every expired session and returns how many were removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.evictLocked(m.now())
}

// Len returns the number of hosted sessions, expired ones included until the
// next sweep.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) expired(h *hosted, now time.Time) bool {
	return now.Sub(h.lastUsed) >= m.idleTimeout
}

func (m *Manager) evictLocked(now time.Time) int {
	evicted := 0
	for id, h := range m.sessions {
		if m.expired(h, now) {
			delete(m.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		m.logger.Info("evicted idle sessions",
			slog.Int("evicted", evicted),
			slog.Int("remaining", len(m.sessions)))
	}
	return evicted
}
