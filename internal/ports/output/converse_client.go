package output

import (
	"context"

	"messenger-connect/internal/domain"
)

// ConverseClient interface - Output port
// Defines what the action runner needs from the external decision service.
// The service is consulted iteratively: each call returns one directive
// (run an action, deliver a message, or stop) for the current turn.
type ConverseClient interface {
	// Converse sends the user's text (first step of a turn only, empty on
	// follow-up steps) and the current context, and returns the next
	// directive to execute.
	Converse(ctx context.Context, sessionID, text string, sessionContext domain.SessionContext) (*domain.ActionDirective, error)
}
