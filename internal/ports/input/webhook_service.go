package input

import "messenger-connect/internal/domain"

// WebhookService interface - Input port
// Defines the use cases exposed to the webhook HTTP adapter
type WebhookService interface {
	// HandleWebhook dispatches a batch of webhook events for processing.
	// Events are processed asynchronously; the call returns once every event
	// in the batch has been dispatched, not when the turns complete.
	HandleWebhook(request domain.WebhookRequest) error
}
