package domain

import "context"

// DirectiveType represents what the decision service asked for on one step
type DirectiveType string

const (
	// DirectiveTypeAction - execute a named registered action
	DirectiveTypeAction DirectiveType = "action"
	// DirectiveTypeMessage - deliver a bot message to the user
	DirectiveTypeMessage DirectiveType = "msg"
	// DirectiveTypeStop - turn complete, no further action
	DirectiveTypeStop DirectiveType = "stop"
)

// Entities maps extracted parameter names to the ordered sequence of values
// the decision service extracted for them. Each element may be a bare scalar
// or a wrapped object of the form {"value": ...}.
type Entities map[string][]interface{}

// First returns the canonical scalar for the first extracted entity under key,
// unwrapping one level of {"value": ...} structure. It reports false when the
// key is missing, the sequence is empty, or extraction is ambiguous. It is a
// best-effort lookup and never fails; callers must handle the absent case.
func (e Entities) First(key string) (interface{}, bool) {
	seq, ok := e[key]
	if !ok || len(seq) == 0 {
		return nil, false
	}
	switch v := seq[0].(type) {
	case map[string]interface{}:
		value, ok := v["value"]
		if !ok {
			return nil, false
		}
		return value, true
	default:
		return v, true
	}
}

// ActionDirective is one step's response from the decision service
type ActionDirective struct {
	Type       DirectiveType
	Action     string   // action name, set when Type is action
	Message    string   // bot message text, set when Type is msg
	Entities   Entities // extracted parameters, set when Type is action
	Confidence float64
}

// ActionPayload is what an action handler is invoked with
type ActionPayload struct {
	SessionID string
	Context   SessionContext
	Entities  Entities
	Message   string // bot message text for the built-in send action
}

// ActionHandler is a registered action capability. It returns a new context to
// replace the session's working context, or nil for a pure side effect.
// Handlers for side-effecting actions must catch their own failures and return
// nil rather than an error, so a failed delivery never crashes a conversation.
type ActionHandler func(ctx context.Context, payload ActionPayload) (SessionContext, error)
