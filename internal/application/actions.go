package application

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"messenger-connect/internal/domain"
	"messenger-connect/internal/ports/output"

	"github.com/sirupsen/logrus"
)

// Action names, matching the decision service vocabulary
const (
	ActionSend         = "send"
	ActionGetVouchers  = "getVouchers"
	ActionPickGreeting = "pickGreeting"
)

// Context keys written by the bundled actions
const (
	keyMerchant         = "merchant"
	keyDeals            = "theDeals"
	keyMerchantSlug     = "merchantSlug"
	keyOffersCount      = "offersCount"
	keyMissingMerchant  = "missingMerchant"
	keyMerchantNotFound = "merchantNotFound"
	keyGreeting         = "greeting"
)

var greetings = []string{
	"Hi",
	"Alright?",
	"Hey There",
	"Sup?",
	"Hello!",
}

// Actions struct - the bundled action handlers behind the registry.
// Every handler follows the same failure policy: side-effect errors are
// logged at the action boundary and never returned, so a failed delivery or
// index lookup cannot abort the enclosing turn.
type Actions struct {
	sessions    output.SessionStore
	messenger   output.MessengerClient
	merchants   output.MerchantIndex
	filters     string // filter expression applied to every index query
	pushTimeout time.Duration
}

// NewActions creates the bundled action handlers.
// pushTimeout bounds the fire-and-forget card delivery; <= 0 uses 10s.
func NewActions(sessions output.SessionStore, messenger output.MessengerClient, merchants output.MerchantIndex, filters string, pushTimeout time.Duration) *Actions {
	if pushTimeout <= 0 {
		pushTimeout = 10 * time.Second
	}
	return &Actions{
		sessions:    sessions,
		messenger:   messenger,
		merchants:   merchants,
		filters:     filters,
		pushTimeout: pushTimeout,
	}
}

// RegisterAll registers every bundled action on the runner
func (a *Actions) RegisterAll(runner *ActionRunner) {
	runner.Register(ActionSend, a.Send)
	runner.Register(ActionGetVouchers, a.GetVouchers)
	runner.Register(ActionPickGreeting, a.PickGreeting)
}

// Send delivers the bot's message to the session's user. It resolves the
// recipient from the session store; a session without a user id means data
// corruption, which is logged and swallowed. Delivery failures are logged and
// swallowed too. Send never returns an error and never changes the context.
func (a *Actions) Send(ctx context.Context, payload domain.ActionPayload) (domain.SessionContext, error) {
	text := payload.Message
	if text == "" {
		if v, ok := payload.Entities.First("text"); ok {
			text = fmt.Sprint(v)
		}
	}
	if text == "" {
		logrus.Warnf("Send action for session %s has no text, nothing to deliver", payload.SessionID)
		return nil, nil
	}

	recipientID, err := a.sessions.ExternalUserID(payload.SessionID)
	if err != nil || recipientID == "" {
		logrus.Errorf("Couldn't find user for session %s: %v", payload.SessionID, err)
		return nil, nil
	}

	if err := a.messenger.SendText(ctx, recipientID, text); err != nil {
		logrus.Errorf("Error forwarding the response to %s: %v", recipientID, err)
	}
	return nil, nil
}

// GetVouchers looks up the merchant named by the extracted entities in the
// search index and records the best match's deals into the context. When a
// match is found, a rich card is also pushed to the user fire-and-forget;
// the card delivery has no bearing on the returned context.
func (a *Actions) GetVouchers(ctx context.Context, payload domain.ActionPayload) (domain.SessionContext, error) {
	updated := payload.Context.Clone()
	delete(updated, keyMissingMerchant)
	delete(updated, keyMerchantNotFound)

	value, ok := payload.Entities.First(keyMerchant)
	if !ok {
		logrus.Infof("No merchant entity extracted for session %s", payload.SessionID)
		updated[keyMissingMerchant] = true
		return updated, nil
	}
	query := fmt.Sprint(value)

	hits, err := a.merchants.SearchMerchants(ctx, query, a.filters)
	if err != nil {
		logrus.Errorf("Merchant index lookup for %q failed: %v", query, err)
		updated[keyMerchantNotFound] = true
		return updated, nil
	}
	if len(hits) == 0 {
		logrus.Infof("No merchant match for %q", query)
		updated[keyMerchantNotFound] = true
		return updated, nil
	}

	best := hits[0]
	updated[keyMerchant] = best.Name
	updated[keyDeals] = fmt.Sprintf("%d offers at %s", best.OffersCount, best.Name)
	updated[keyMerchantSlug] = best.Slug
	updated[keyOffersCount] = best.OffersCount

	a.pushMerchantCard(payload.SessionID, best)

	return updated, nil
}

// pushMerchantCard delivers the rich card asynchronously. Failures here are
// internal to the action and only logged.
func (a *Actions) pushMerchantCard(sessionID string, merchant domain.Merchant) {
	recipientID, err := a.sessions.ExternalUserID(sessionID)
	if err != nil || recipientID == "" {
		logrus.Errorf("Couldn't find user for session %s: %v", sessionID, err)
		return
	}

	card := domain.MerchantCard{
		Title:    merchant.Name,
		Subtitle: fmt.Sprintf("%d offers available", merchant.OffersCount),
		ImageURL: merchant.ImageURL,
		LinkURL:  fmt.Sprintf("https://www.vouchercodes.co.uk/%s", merchant.Slug),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.pushTimeout)
		defer cancel()
		if err := a.messenger.SendMerchantCard(ctx, recipientID, card); err != nil {
			logrus.Errorf("Error pushing merchant card to %s: %v", recipientID, err)
		}
	}()
}

// PickGreeting puts a random greeting into the context for the decision
// service to use in its next message.
func (a *Actions) PickGreeting(_ context.Context, payload domain.ActionPayload) (domain.SessionContext, error) {
	updated := payload.Context.Clone()
	updated[keyGreeting] = greetings[rand.Intn(len(greetings))]
	return updated, nil
}
