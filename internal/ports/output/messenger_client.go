package output

import (
	"context"

	"messenger-connect/internal/domain"
)

// MessengerClient interface - Output port
// Defines what the application needs from the Messenger Send API
type MessengerClient interface {
	// SendText delivers a plain text message to a user by PSID.
	// Returns a *domain.DeliveryError on a non-2xx response or an error payload.
	SendText(ctx context.Context, recipientID, text string) error

	// SendMerchantCard delivers a structured rich message card to a user by PSID.
	// Returns a *domain.DeliveryError on a non-2xx response or an error payload.
	SendMerchantCard(ctx context.Context, recipientID string, card domain.MerchantCard) error
}
