package application

import (
	"context"
	"fmt"
	"sort"

	"messenger-connect/internal/domain"
	"messenger-connect/internal/ports/output"

	"github.com/sirupsen/logrus"
)

// DefaultMaxSteps caps the number of decision-service consultations per turn.
// Without a cap a misbehaving decision service could request actions forever.
const DefaultMaxSteps = 5

// ActionRunner struct - drives one full turn of dialogue: consult the decision
// service, execute the directive it names, and repeat with the updated context
// until the service signals stop or the step budget is exhausted.
type ActionRunner struct {
	converse output.ConverseClient
	actions  map[string]domain.ActionHandler
	maxSteps int
}

// NewActionRunner creates a new action runner.
// maxSteps <= 0 falls back to DefaultMaxSteps.
func NewActionRunner(converse output.ConverseClient, maxSteps int) *ActionRunner {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	return &ActionRunner{
		converse: converse,
		actions:  make(map[string]domain.ActionHandler),
		maxSteps: maxSteps,
	}
}

// Register adds a named action handler to the registry.
// Registering the same name twice replaces the earlier handler.
func (r *ActionRunner) Register(name string, handler domain.ActionHandler) {
	r.actions[name] = handler
}

// ValidateRegistry checks the registry against the decision service's known
// action vocabulary. Called once at startup so a vocabulary mismatch fails
// fast instead of surfacing per-turn as UnknownActionError.
func (r *ActionRunner) ValidateRegistry(vocabulary []string) error {
	known := make(map[string]bool, len(vocabulary))
	for _, name := range vocabulary {
		known[name] = true
		if _, ok := r.actions[name]; !ok {
			return fmt.Errorf("action %q is in the decision service vocabulary but not registered", name)
		}
	}

	var extra []string
	for name := range r.actions {
		if !known[name] {
			extra = append(extra, name)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return fmt.Errorf("registered actions %v are not in the decision service vocabulary", extra)
	}
	return nil
}

// RunTurn executes one full turn for a session: the user's text and current
// context are sent to the decision service, each returned directive is
// executed, and the loop repeats with the updated context until the service
// signals stop or maxSteps is reached. The returned context reflects every
// replacement made before the turn ended, including when the turn errors -
// there is no rollback.
//
// A handler error is logged and treated as no context change; the loop
// continues, so a failed side effect never crashes the conversation. Only an
// unknown action or a decision-service failure aborts the turn.
func (r *ActionRunner) RunTurn(ctx context.Context, sessionID, text string, sessionContext domain.SessionContext) (domain.SessionContext, error) {
	current := sessionContext
	if current == nil {
		current = domain.SessionContext{}
	}

	// Only the first consultation of a turn carries the user's text.
	query := text

	for step := 0; step < r.maxSteps; step++ {
		directive, err := r.converse.Converse(ctx, sessionID, query, current)
		if err != nil {
			return current, fmt.Errorf("decision service: %w", err)
		}
		query = ""

		switch directive.Type {
		case domain.DirectiveTypeStop:
			return current, nil

		case domain.DirectiveTypeMessage:
			// The service wants a message delivered; route it through the
			// registered send action so delivery failure policy lives in
			// one place.
			current = r.execute(ctx, ActionSend, sessionID, current, domain.Entities{}, directive.Message)

		case domain.DirectiveTypeAction:
			if _, ok := r.actions[directive.Action]; !ok {
				return current, &domain.UnknownActionError{Action: directive.Action}
			}
			current = r.execute(ctx, directive.Action, sessionID, current, directive.Entities, directive.Message)

		default:
			logrus.Warnf("Ignoring directive with unknown type %q for session %s", directive.Type, sessionID)
		}
	}

	logrus.Warnf("Turn for session %s reached the %d step budget, returning current context", sessionID, r.maxSteps)
	return current, nil
}

// execute invokes a registered handler and applies its result. A nil result
// means no context change; an error is logged and also means no change.
func (r *ActionRunner) execute(ctx context.Context, name, sessionID string, current domain.SessionContext, entities domain.Entities, message string) domain.SessionContext {
	handler := r.actions[name]
	if handler == nil {
		logrus.Errorf("Action %q has no handler, skipping", name)
		return current
	}

	updated, err := handler(ctx, domain.ActionPayload{
		SessionID: sessionID,
		Context:   current,
		Entities:  entities,
		Message:   message,
	})
	if err != nil {
		logrus.Errorf("Action %q failed for session %s: %v", name, sessionID, err)
		return current
	}
	if updated != nil {
		return updated
	}
	return current
}
