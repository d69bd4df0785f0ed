package output

import (
	"context"

	"messenger-connect/internal/domain"
)

// MerchantIndex interface - Output port
// Defines what the application needs from the external merchant search index
type MerchantIndex interface {
	// SearchMerchants runs a free-text query with an optional filter
	// expression and returns zero or more ranked matches.
	SearchMerchants(ctx context.Context, query, filters string) ([]domain.Merchant, error)
}
