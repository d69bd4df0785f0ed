package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"messenger-connect/internal/domain"
)

// TestSendSwallowsMissingUser tests that a session without a resolvable user
// id is logged and swallowed rather than aborting the turn.
func TestSendSwallowsMissingUser(t *testing.T) {
	store := &MockSessionStore{
		ExternalUserIDFunc: func(sessionID string) (string, error) {
			return "", domain.ErrSessionNotFound
		},
	}
	messenger := &MockMessengerClient{}
	actions := NewActions(store, messenger, &MockMerchantIndex{}, "", time.Second)

	result, err := actions.Send(context.Background(), domain.ActionPayload{
		SessionID: "session-1",
		Entities:  domain.Entities{"text": []interface{}{"hi"}},
	})
	if err != nil {
		t.Fatalf("expected send to never return an error, got %v", err)
	}
	if result != nil {
		t.Errorf("expected no context change, got %v", result)
	}
	if len(messenger.SentTexts) != 0 {
		t.Errorf("expected no delivery attempt, got %v", messenger.SentTexts)
	}
}

// TestSendSwallowsDeliveryFailure tests the never-crash-the-turn policy
func TestSendSwallowsDeliveryFailure(t *testing.T) {
	messenger := &MockMessengerClient{
		SendTextFunc: func(ctx context.Context, recipientID, text string) error {
			return &domain.DeliveryError{Recipient: recipientID, Reason: "boom"}
		},
	}
	actions := NewActions(&MockSessionStore{}, messenger, &MockMerchantIndex{}, "", time.Second)

	result, err := actions.Send(context.Background(), domain.ActionPayload{
		SessionID: "session-1",
		Message:   "hi",
	})
	if err != nil {
		t.Fatalf("expected delivery failure to be swallowed, got %v", err)
	}
	if result != nil {
		t.Errorf("expected no context change, got %v", result)
	}
}

// TestGetVouchersRecordsMatchAndPushesCard tests the lookup-and-deliver flow:
// the best hit's fields land in the context and a card goes out asynchronously.
func TestGetVouchersRecordsMatchAndPushesCard(t *testing.T) {
	index := &MockMerchantIndex{
		SearchMerchantsFunc: func(ctx context.Context, query, filters string) ([]domain.Merchant, error) {
			return []domain.Merchant{
				{Name: "Acme", Slug: "acme", OffersCount: 12, ImageURL: "https://img.example/acme.png"},
				{Name: "Acme Outlet", Slug: "acme-outlet", OffersCount: 3},
			}, nil
		},
	}
	messenger := &MockMessengerClient{SentCards: make(chan domain.MerchantCard, 1)}
	actions := NewActions(&MockSessionStore{}, messenger, index, "offers_count > 0", time.Second)

	result, err := actions.GetVouchers(context.Background(), domain.ActionPayload{
		SessionID: "session-1",
		Context:   domain.SessionContext{},
		Entities: domain.Entities{
			"merchant": []interface{}{map[string]interface{}{"value": "Acme"}},
		},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if index.LastQuery != "Acme" {
		t.Errorf("expected index query Acme, got %q", index.LastQuery)
	}
	if index.LastFilters != "offers_count > 0" {
		t.Errorf("expected configured filters, got %q", index.LastFilters)
	}
	if result["merchant"] != "Acme" || result["merchantSlug"] != "acme" || result["offersCount"] != 12 {
		t.Errorf("expected best match recorded in context, got %v", result)
	}
	if result["theDeals"] == nil {
		t.Error("expected theDeals recorded in context")
	}

	select {
	case card := <-messenger.SentCards:
		if card.Title != "Acme" {
			t.Errorf("expected card for Acme, got %q", card.Title)
		}
		if card.ImageURL != "https://img.example/acme.png" {
			t.Errorf("expected card image, got %q", card.ImageURL)
		}
	case <-time.After(time.Second):
		t.Error("expected a merchant card push")
	}
}

// TestGetVouchersMissingEntityRecordsMarker tests the absent-parameter path
func TestGetVouchersMissingEntityRecordsMarker(t *testing.T) {
	index := &MockMerchantIndex{}
	actions := NewActions(&MockSessionStore{}, &MockMessengerClient{}, index, "", time.Second)

	result, err := actions.GetVouchers(context.Background(), domain.ActionPayload{
		SessionID: "session-1",
		Context:   domain.SessionContext{},
		Entities:  domain.Entities{},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result["missingMerchant"] != true {
		t.Errorf("expected missingMerchant marker, got %v", result)
	}
	if index.CallCount != 0 {
		t.Errorf("expected no index query without a merchant, got %d", index.CallCount)
	}
}

// TestGetVouchersIndexFailureRecordsNotFound tests that an index failure is
// caught at the action boundary.
func TestGetVouchersIndexFailureRecordsNotFound(t *testing.T) {
	index := &MockMerchantIndex{
		SearchMerchantsFunc: func(ctx context.Context, query, filters string) ([]domain.Merchant, error) {
			return nil, errors.New("index unreachable")
		},
	}
	actions := NewActions(&MockSessionStore{}, &MockMessengerClient{}, index, "", time.Second)

	result, err := actions.GetVouchers(context.Background(), domain.ActionPayload{
		SessionID: "session-1",
		Context:   domain.SessionContext{},
		Entities:  domain.Entities{"merchant": []interface{}{"Acme"}},
	})
	if err != nil {
		t.Fatalf("expected index failure to be swallowed, got %v", err)
	}
	if result["merchantNotFound"] != true {
		t.Errorf("expected merchantNotFound marker, got %v", result)
	}
}

// TestGetVouchersNoHitsRecordsNotFound tests the empty result path
func TestGetVouchersNoHitsRecordsNotFound(t *testing.T) {
	actions := NewActions(&MockSessionStore{}, &MockMessengerClient{}, &MockMerchantIndex{}, "", time.Second)

	result, err := actions.GetVouchers(context.Background(), domain.ActionPayload{
		SessionID: "session-1",
		Context:   domain.SessionContext{"greeting": "Hi"},
		Entities:  domain.Entities{"merchant": []interface{}{"Acme"}},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result["merchantNotFound"] != true {
		t.Errorf("expected merchantNotFound marker, got %v", result)
	}
	if result["greeting"] != "Hi" {
		t.Error("expected unrelated context keys kept")
	}
}

// TestPickGreetingSetsAGreeting tests that one of the canned greetings lands
// in the context without touching other keys.
func TestPickGreetingSetsAGreeting(t *testing.T) {
	actions := NewActions(&MockSessionStore{}, &MockMessengerClient{}, &MockMerchantIndex{}, "", time.Second)

	result, err := actions.PickGreeting(context.Background(), domain.ActionPayload{
		SessionID: "session-1",
		Context:   domain.SessionContext{"theDeals": "10% off"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	greeting, ok := result["greeting"].(string)
	if !ok || greeting == "" {
		t.Fatalf("expected a greeting, got %v", result["greeting"])
	}
	found := false
	for _, candidate := range greetings {
		if candidate == greeting {
			found = true
		}
	}
	if !found {
		t.Errorf("greeting %q is not one of the canned greetings", greeting)
	}
	if result["theDeals"] != "10% off" {
		t.Error("expected unrelated context keys kept")
	}
}
