package memory

import (
	"errors"
	"sync"
	"testing"

	"messenger-connect/internal/domain"
)

// TestResolveSessionCreatesExactlyOneSessionPerUser tests that the first
// message from a user creates a session and later resolutions reuse it.
func TestResolveSessionCreatesExactlyOneSessionPerUser(t *testing.T) {
	store := NewMemorySessionStore()

	first := store.ResolveSession("1234567890")
	if first == "" {
		t.Fatal("expected a session id")
	}

	second := store.ResolveSession("1234567890")
	if second != first {
		t.Errorf("expected same session id, got %q then %q", first, second)
	}

	other := store.ResolveSession("0987654321")
	if other == first {
		t.Error("expected a distinct session for a distinct user")
	}
}

// TestResolveSessionBindsExternalUserID tests that the created session is
// bound to the resolving user's id.
func TestResolveSessionBindsExternalUserID(t *testing.T) {
	store := NewMemorySessionStore()

	sessionID := store.ResolveSession("1234567890")

	userID, err := store.ExternalUserID(sessionID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if userID != "1234567890" {
		t.Errorf("expected user id 1234567890, got %q", userID)
	}
}

// TestGetContextReturnsEmptyContextForNewSession tests lazy session creation
func TestGetContextReturnsEmptyContextForNewSession(t *testing.T) {
	store := NewMemorySessionStore()
	sessionID := store.ResolveSession("1234567890")

	context, err := store.GetContext(sessionID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(context) != 0 {
		t.Errorf("expected empty context, got %v", context)
	}
}

// TestSetContextReplacesStoredContext tests the context replacement round trip
func TestSetContextReplacesStoredContext(t *testing.T) {
	store := NewMemorySessionStore()
	sessionID := store.ResolveSession("1234567890")

	updated := domain.SessionContext{"greeting": "Hi", "theDeals": "10% off"}
	if err := store.SetContext(sessionID, updated); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	context, err := store.GetContext(sessionID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if context["greeting"] != "Hi" || context["theDeals"] != "10% off" {
		t.Errorf("expected replaced context, got %v", context)
	}
}

// TestUnknownSessionReturnsErrSessionNotFound tests every lookup operation
// against an unknown session id.
func TestUnknownSessionReturnsErrSessionNotFound(t *testing.T) {
	store := NewMemorySessionStore()

	if _, err := store.GetContext("no-such-session"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("GetContext: expected ErrSessionNotFound, got %v", err)
	}
	if err := store.SetContext("no-such-session", domain.SessionContext{}); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("SetContext: expected ErrSessionNotFound, got %v", err)
	}
	if _, err := store.ExternalUserID("no-such-session"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("ExternalUserID: expected ErrSessionNotFound, got %v", err)
	}
}

// TestLockSessionSerializesTurnsForOneSession tests that the per-session lock
// makes concurrent turns for the same session run one at a time.
func TestLockSessionSerializesTurnsForOneSession(t *testing.T) {
	store := NewMemorySessionStore()
	sessionID := store.ResolveSession("1234567890")

	var inTurn, maxInTurn int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := store.LockSession(sessionID)
			defer unlock()

			mu.Lock()
			inTurn++
			if inTurn > maxInTurn {
				maxInTurn = inTurn
			}
			mu.Unlock()

			mu.Lock()
			inTurn--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxInTurn != 1 {
		t.Errorf("expected at most one concurrent turn per session, observed %d", maxInTurn)
	}
}

// TestConcurrentResolveSessionDoesNotDuplicate tests that concurrent webhook
// deliveries for the same new user still produce a single session.
func TestConcurrentResolveSessionDoesNotDuplicate(t *testing.T) {
	store := NewMemorySessionStore()

	ids := make([]string, 16)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ids[n] = store.ResolveSession("1234567890")
		}(i)
	}
	wg.Wait()

	for _, id := range ids[1:] {
		if id != ids[0] {
			t.Fatalf("expected one session id, got %q and %q", ids[0], id)
		}
	}
}
