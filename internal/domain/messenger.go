package domain

import "time"

// MessengerEventType represents the type of webhook event from Messenger
type MessengerEventType string

const (
	// MessengerEventTypeMessage - Message event
	MessengerEventTypeMessage MessengerEventType = "message"
	// MessengerEventTypePostback - Postback event
	MessengerEventTypePostback MessengerEventType = "postback"
	// MessengerEventTypeDelivery - Delivery receipt event
	MessengerEventTypeDelivery MessengerEventType = "delivery"
	// MessengerEventTypeRead - Read receipt event
	MessengerEventTypeRead MessengerEventType = "read"
)

// WebhookEvent represents a single Messenger webhook event (domain entity)
type WebhookEvent struct {
	Type           MessengerEventType
	SenderID       string // page-scoped user id (PSID) of the sender
	RecipientID    string
	Timestamp      time.Time
	MessageID      string
	Text           string
	IsEcho         bool
	HasAttachments bool
}

// WebhookRequest represents a batch of events delivered in one webhook callback
type WebhookRequest struct {
	Events []WebhookEvent
}

// MerchantCard is a structured rich message delivered as a generic template
type MerchantCard struct {
	Title    string
	Subtitle string
	ImageURL string
	LinkURL  string
}

// Merchant is a single ranked match returned by the merchant search index
type Merchant struct {
	Name        string
	Slug        string
	OffersCount int
	ImageURL    string
}
