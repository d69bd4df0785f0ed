package configs

import (
	"os"
	"testing"
)

// setupTestEnv sets up required environment variables for config unmarshaling
func setupTestEnv() {
	os.Setenv("APP_DEBUG", "false")
	os.Setenv("APP_ENV", "test")
	os.Setenv("APP_PORT", "8445")
	os.Setenv("MESSENGER_APP_SECRET", "test-secret")
	os.Setenv("MESSENGER_PAGE_TOKEN", "test-page-token")
	os.Setenv("MESSENGER_VERIFY_TOKEN", "test-verify-token")
	os.Setenv("WIT_TOKEN", "test-wit-token")
	os.Setenv("ALGOLIA_APP_ID", "TESTAPP")
	os.Setenv("ALGOLIA_API_KEY", "test-api-key")
	os.Setenv("ALGOLIA_INDEX", "merchants")
}

// cleanupTestEnv cleans up environment variables after tests
func cleanupTestEnv() {
	os.Unsetenv("APP_DEBUG")
	os.Unsetenv("APP_ENV")
	os.Unsetenv("APP_PORT")
	os.Unsetenv("MESSENGER_APP_SECRET")
	os.Unsetenv("MESSENGER_PAGE_TOKEN")
	os.Unsetenv("MESSENGER_VERIFY_TOKEN")
	os.Unsetenv("WIT_TOKEN")
	os.Unsetenv("WIT_MAX_STEPS")
	os.Unsetenv("ALGOLIA_APP_ID")
	os.Unsetenv("ALGOLIA_API_KEY")
	os.Unsetenv("ALGOLIA_INDEX")
}

// TestEnvOverridesConfigFile tests that environment variables override the
// values in config.yml.
func TestEnvOverridesConfigFile(t *testing.T) {
	setupTestEnv()
	defer cleanupTestEnv()

	InitViper(".", "test")

	cfg := GetViper()

	if cfg.Messenger.AppSecret != "test-secret" {
		t.Errorf("expected messenger app secret from env, got %q", cfg.Messenger.AppSecret)
	}
	if cfg.Wit.Token != "test-wit-token" {
		t.Errorf("expected wit token from env, got %q", cfg.Wit.Token)
	}
	if cfg.Algolia.AppID != "TESTAPP" {
		t.Errorf("expected algolia app id from env, got %q", cfg.Algolia.AppID)
	}
	if cfg.App.Port != "8445" {
		t.Errorf("expected app port, got %q", cfg.App.Port)
	}
}

// TestMaxStepsUnmarshal tests that the action loop budget is configurable
func TestMaxStepsUnmarshal(t *testing.T) {
	setupTestEnv()
	defer cleanupTestEnv()

	os.Setenv("WIT_MAX_STEPS", "7")

	InitViper(".", "test")

	cfg := GetViper()
	if cfg.Wit.MaxSteps != 7 {
		t.Errorf("expected max steps 7, got %d", cfg.Wit.MaxSteps)
	}
}

// TestActionVocabularyFromConfigFile tests that the decision service
// vocabulary is read from config.yml.
func TestActionVocabularyFromConfigFile(t *testing.T) {
	setupTestEnv()
	defer cleanupTestEnv()

	InitViper(".", "test")

	cfg := GetViper()
	if len(cfg.Wit.Actions) != 3 {
		t.Fatalf("expected 3 vocabulary actions, got %v", cfg.Wit.Actions)
	}
	expected := map[string]bool{"send": true, "getVouchers": true, "pickGreeting": true}
	for _, name := range cfg.Wit.Actions {
		if !expected[name] {
			t.Errorf("unexpected vocabulary action %q", name)
		}
	}
}
