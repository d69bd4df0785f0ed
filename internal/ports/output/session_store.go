package output

import "messenger-connect/internal/domain"

// SessionStore interface - Output port
// Defines what the application needs for managing dialogue sessions.
// A session is keyed by the messaging platform's user id because a user may
// message at any time without a client-supplied session token; the store owns
// session continuity. Implementations must be safe for concurrent access.
type SessionStore interface {
	// ResolveSession returns the session id for the given external user id,
	// creating a new session with an empty context if none exists yet.
	// It never fails and never creates duplicates for the same external id.
	ResolveSession(externalUserID string) string

	// GetContext returns the current context for a session.
	// Returns domain.ErrSessionNotFound if the session id is unknown.
	GetContext(sessionID string) (domain.SessionContext, error)

	// SetContext replaces the stored context for a session.
	// Returns domain.ErrSessionNotFound if the session id is unknown.
	SetContext(sessionID string, context domain.SessionContext) error

	// ExternalUserID returns the platform user id a session belongs to.
	// Returns domain.ErrSessionNotFound if the session id is unknown.
	ExternalUserID(sessionID string) (string, error)

	// LockSession acquires the per-session turn lock and returns the unlock
	// function. At most one turn executes per session at a time; turns for
	// other sessions proceed unblocked.
	LockSession(sessionID string) (unlock func())
}
