package capture

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL is how long an untouched session survives.
const DefaultSessionTTL = 30 * time.Minute

type session struct {
	flow     *Flow
	lastUsed time.Time
}

// Manager owns the capture sessions of a server, keyed by UUID. Sessions
// idle for longer than the TTL are closed and forgotten.
type Manager struct {
	newFlow       func() *Flow
	ttl           time.Duration
	maxPhotoBytes int64
	logger        *slog.Logger
	now           func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewManager builds sessions from opts; every session shares its
// collaborators.
func NewManager(opts Options, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Manager{
		newFlow:       func() *Flow { return NewFlow(opts) },
		ttl:           ttl,
		maxPhotoBytes: opts.maxPhotoBytes(),
		logger:        opts.Logger,
		now:           time.Now,
		sessions:      make(map[string]*session),
	}
}

// MaxPhotoBytes is the photo size limit every session enforces.
func (m *Manager) MaxPhotoBytes() int64 {
	return m.maxPhotoBytes
}

func (m *Manager) Create() (string, *Flow) {
	m.mu.Lock()
	expired := m.sweep()
	id := uuid.NewString()
	flow := m.newFlow()
	m.sessions[id] = &session{flow: flow, lastUsed: m.now()}
	m.mu.Unlock()

	m.closeAll(expired)
	m.logger.Debug("capture session created", "session_id", id)
	return id, flow
}

// Get returns the session's flow and refreshes its idle timer.
func (m *Manager) Get(id string) (*Flow, bool) {
	m.mu.Lock()
	expired := m.sweep()
	s, ok := m.sessions[id]
	if ok {
		s.lastUsed = m.now()
	}
	m.mu.Unlock()

	m.closeAll(expired)
	if !ok {
		return nil, false
	}
	return s.flow, true
}

// Delete closes and forgets a session. Unknown ids are ignored.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		m.closeFlow(id, s.flow)
	}
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Run sweeps expired sessions until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	interval := m.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.mu.Lock()
			expired := m.sweep()
			m.mu.Unlock()
			m.closeAll(expired)
		}
	}
}

// Close closes every session.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*session)
	m.mu.Unlock()

	m.closeAll(sessions)
}

// sweep removes sessions idle past the TTL and returns them for closing
// once m.mu is released. Callers hold m.mu.
func (m *Manager) sweep() map[string]*session {
	cutoff := m.now().Add(-m.ttl)
	var expired map[string]*session
	for id, s := range m.sessions {
		if s.lastUsed.Before(cutoff) {
			if expired == nil {
				expired = make(map[string]*session)
			}
			expired[id] = s
			delete(m.sessions, id)
			m.logger.Info("capture session expired", "session_id", id)
		}
	}
	return expired
}

func (m *Manager) closeAll(sessions map[string]*session) {
	for id, s := range sessions {
		m.closeFlow(id, s.flow)
	}
}

func (m *Manager) closeFlow(id string, f *Flow) {
	if err := f.Close(); err != nil {
		m.logger.Error("failed to close capture session", "session_id", id, "error", err)
	}
}
