package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionContext is the open-ended dialogue state accumulated across turns.
// There is no fixed schema - actions may add, remove or overwrite any key.
type SessionContext map[string]interface{}

// Clone returns a shallow copy of the context so an action can build a new
// context without mutating the caller's working copy.
func (c SessionContext) Clone() SessionContext {
	clone := make(SessionContext, len(c))
	for k, v := range c {
		clone[k] = v
	}
	return clone
}

// Session represents a conversation session for a Messenger user
type Session struct {
	ID             string         // opaque unique session identifier
	ExternalUserID string         // Messenger PSID, immutable once set
	Context        SessionContext // dialogue state, replaced after every turn
	CreatedAt      time.Time
}

// NewSession creates a new session for a user with a fresh id and empty context
func NewSession(externalUserID string) *Session {
	return &Session{
		ID:             uuid.NewString(),
		ExternalUserID: externalUserID,
		Context:        SessionContext{},
		CreatedAt:      time.Now(),
	}
}
