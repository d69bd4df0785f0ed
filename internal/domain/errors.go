package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound indicates an unknown session id was used
	ErrSessionNotFound = errors.New("session not found")

	// ErrSignatureMissing indicates an inbound request carried no signature header
	ErrSignatureMissing = errors.New("missing request signature")

	// ErrSignatureMismatch indicates an inbound request signature did not verify
	ErrSignatureMismatch = errors.New("request signature mismatch")
)

// UnknownActionError indicates the decision service named an action that is
// not present in the registry. It aborts only the current turn; context
// accumulated before the directive is preserved.
type UnknownActionError struct {
	Action string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unknown action %q", e.Action)
}

// DeliveryError indicates an external message delivery failed
type DeliveryError struct {
	Recipient string
	Reason    string
	Err       error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("delivery to %s failed: %s: %v", e.Recipient, e.Reason, e.Err)
	}
	return fmt.Sprintf("delivery to %s failed: %s", e.Recipient, e.Reason)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
