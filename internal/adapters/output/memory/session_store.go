package memory

import (
	"sync"

	"messenger-connect/internal/domain"
	"messenger-connect/internal/ports/output"
)

// Compile-time check to ensure MemorySessionStore implements SessionStore interface
var _ output.SessionStore = (*MemorySessionStore)(nil)

// MemorySessionStore struct - Output adapter for in-memory session storage.
// Sessions are indexed both by session id and by external user id, so
// resolving a user to their session is a constant-time lookup. Nothing is
// persisted beyond process lifetime and sessions never expire.
//
// A single mutex guards the maps; per-session turn locks are handed out
// separately so one user's turn never blocks another user's.
type MemorySessionStore struct {
	mu        sync.Mutex
	sessions  map[string]*domain.Session // session id -> session
	userIndex map[string]string          // external user id -> session id
	turnLocks map[string]*sync.Mutex     // session id -> turn lock
}

// NewMemorySessionStore creates a new in-memory session store
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions:  make(map[string]*domain.Session),
		userIndex: make(map[string]string),
		turnLocks: make(map[string]*sync.Mutex),
	}
}

// ResolveSession returns the session id for an external user id, creating a
// new session with an empty context when the user has not been seen before.
// Exactly one session exists per distinct external user id.
func (m *MemorySessionStore) ResolveSession(externalUserID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sessionID, exists := m.userIndex[externalUserID]; exists {
		return sessionID
	}

	session := domain.NewSession(externalUserID)
	m.sessions[session.ID] = session
	m.userIndex[externalUserID] = session.ID
	return session.ID
}

// GetContext retrieves the current context for a session.
// Returns domain.ErrSessionNotFound if the session id is unknown.
func (m *MemorySessionStore) GetContext(sessionID string) (domain.SessionContext, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return nil, domain.ErrSessionNotFound
	}
	return session.Context, nil
}

// SetContext replaces the stored context for a session.
// Returns domain.ErrSessionNotFound if the session id is unknown.
func (m *MemorySessionStore) SetContext(sessionID string, context domain.SessionContext) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return domain.ErrSessionNotFound
	}
	session.Context = context
	return nil
}

// ExternalUserID returns the platform user id a session belongs to.
// Returns domain.ErrSessionNotFound if the session id is unknown.
func (m *MemorySessionStore) ExternalUserID(sessionID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return "", domain.ErrSessionNotFound
	}
	return session.ExternalUserID, nil
}

// LockSession acquires the per-session turn lock and returns its unlock
// function. Concurrent webhook deliveries for the same user serialize here;
// other sessions proceed independently. Locking an unknown session id is
// allowed so callers can lock before the first context read.
func (m *MemorySessionStore) LockSession(sessionID string) func() {
	m.mu.Lock()
	lock, exists := m.turnLocks[sessionID]
	if !exists {
		lock = &sync.Mutex{}
		m.turnLocks[sessionID] = lock
	}
	m.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
