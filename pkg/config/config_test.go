package config

import (
	"os"
	"testing"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	os.Unsetenv("DATABASE_URL")
	_, err := Load(t.TempDir())
	if err == nil {
		t.Fatal("expected error when DATABASE_URL is unset")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/conclave")
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Events.Backend != EventsBackendInProcess {
		t.Errorf("expected in-process backend without REDIS_URL, got %s", cfg.Events.Backend)
	}
	if cfg.LLM.RetryMax != 3 {
		t.Errorf("expected default retry max 3, got %d", cfg.LLM.RetryMax)
	}
}

func TestLoadBrokerBackendFromRedisURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/conclave")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Events.Backend != EventsBackendBroker {
		t.Errorf("expected broker backend with REDIS_URL set, got %s", cfg.Events.Backend)
	}
}

func TestLoadAuthRequiresSecretWhenEnabled(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/conclave")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")
	_, err := Load(t.TempDir())
	if err == nil {
		t.Fatal("expected error when AUTH_ENABLED=true but JWT_SECRET unset")
	}
}

func TestLLMProviderRegistryResolveModel(t *testing.T) {
	reg := DefaultLLMProviderRegistry()
	name, provider, err := reg.ResolveModel("claude-sonnet-4-5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "anthropic" || provider.Type != LLMProviderTypeAnthropic {
		t.Errorf("expected anthropic provider, got %s/%v", name, provider.Type)
	}

	if _, _, err := reg.ResolveModel("unknown-model-xyz"); err == nil {
		t.Error("expected error for unresolvable model prefix")
	}
}
