package application

import (
	"context"
	"time"

	"messenger-connect/internal/domain"
	"messenger-connect/internal/ports/output"

	"github.com/sirupsen/logrus"
)

const (
	// defaultTurnTimeout bounds one full turn including every external call
	defaultTurnTimeout = 90 * time.Second

	attachmentReply = "Sorry I can only process text messages for now."
)

// WebhookService struct - Application service implementing webhook use cases.
// Each event is processed on its own goroutine; the per-session lock in the
// store serializes turns for the same user while other users run unblocked.
type WebhookService struct {
	sessions    output.SessionStore
	messenger   output.MessengerClient
	runner      *ActionRunner
	turnTimeout time.Duration
}

// NewWebhookService creates a new webhook service.
// turnTimeout <= 0 falls back to defaultTurnTimeout.
func NewWebhookService(sessions output.SessionStore, messenger output.MessengerClient, runner *ActionRunner, turnTimeout time.Duration) *WebhookService {
	if turnTimeout <= 0 {
		turnTimeout = defaultTurnTimeout
	}
	return &WebhookService{
		sessions:    sessions,
		messenger:   messenger,
		runner:      runner,
		turnTimeout: turnTimeout,
	}
}

// HandleWebhook func - Use case: dispatch a batch of webhook events.
// Returns once every event is dispatched; turns complete asynchronously so
// the webhook HTTP response never waits on external services.
func (s *WebhookService) HandleWebhook(request domain.WebhookRequest) error {
	for _, event := range request.Events {
		logrus.Infof("Received messenger event: type=%s, sender=%s", event.Type, event.SenderID)

		if event.Type != domain.MessengerEventTypeMessage {
			logrus.Infof("Unhandled event type: %s", event.Type)
			continue
		}
		if event.IsEcho {
			continue
		}

		go s.ProcessEvent(event)
	}
	return nil
}

// ProcessEvent runs the full pipeline for one message event: resolve the
// sender's session, run a turn, persist the returned context.
func (s *WebhookService) ProcessEvent(event domain.WebhookEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), s.turnTimeout)
	defer cancel()

	if event.HasAttachments {
		// Attachments bypass the action runner entirely.
		if err := s.messenger.SendText(ctx, event.SenderID, attachmentReply); err != nil {
			logrus.Errorf("Failed to send attachment reply to %s: %v", event.SenderID, err)
		}
		return
	}
	if event.Text == "" {
		logrus.Infof("Ignoring empty message from %s", event.SenderID)
		return
	}

	sessionID := s.sessions.ResolveSession(event.SenderID)

	unlock := s.sessions.LockSession(sessionID)
	defer unlock()

	sessionContext, err := s.sessions.GetContext(sessionID)
	if err != nil {
		logrus.Errorf("Failed to load context for session %s: %v", sessionID, err)
		return
	}

	updated, err := s.runner.RunTurn(ctx, sessionID, event.Text, sessionContext)
	if err != nil {
		// The turn aborted, but context accumulated before the failure is
		// still persisted below.
		logrus.Errorf("Turn for session %s failed: %v", sessionID, err)
	} else {
		logrus.Infof("Turn for session %s complete, waiting for next user message", sessionID)
	}

	if updated != nil {
		if err := s.sessions.SetContext(sessionID, updated); err != nil {
			logrus.Errorf("Failed to persist context for session %s: %v", sessionID, err)
		}
	}
}
