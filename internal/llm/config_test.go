package llm

import "testing"

func TestDiscoverConfig_Priority(t *testing.T) {
	t.Setenv("PARLO_LLM_PROVIDER", "")
	t.Setenv("PARLO_GROQ_API_KEY", "")
	t.Setenv("PARLO_OPENAI_API_KEY", "")
	t.Setenv("PARLO_ANTHROPIC_API_KEY", "")
	t.Setenv("PARLO_GEMINI_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	if _, ok := DiscoverConfig(); ok {
		t.Fatal("expected no provider without any API key")
	}

	t.Setenv("GEMINI_API_KEY", "gmk")
	cfg, ok := DiscoverConfig()
	if !ok || cfg.Provider != "gemini" {
		t.Fatalf("expected gemini fallback, got %q (ok=%v)", cfg.Provider, ok)
	}

	t.Setenv("ANTHROPIC_API_KEY", "ak")
	cfg, _ = DiscoverConfig()
	if cfg.Provider != "anthropic" {
		t.Fatalf("expected anthropic over gemini, got %q", cfg.Provider)
	}

	t.Setenv("OPENAI_API_KEY", "ok")
	cfg, _ = DiscoverConfig()
	if cfg.Provider != "openai" {
		t.Fatalf("expected openai over anthropic, got %q", cfg.Provider)
	}

	t.Setenv("GROQ_API_KEY", "gk")
	cfg, _ = DiscoverConfig()
	if cfg.Provider != "groq" {
		t.Fatalf("expected groq to win, got %q", cfg.Provider)
	}
}

func TestDiscoverConfig_ExplicitProviderWins(t *testing.T) {
	t.Setenv("PARLO_LLM_PROVIDER", "mock")
	t.Setenv("GROQ_API_KEY", "gk")

	cfg, ok := DiscoverConfig()
	if !ok || cfg.Provider != "mock" {
		t.Fatalf("expected explicit provider to win, got %q (ok=%v)", cfg.Provider, ok)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "groq"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing groq key")
	}
	cfg.Groq.APIKey = "gk"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.Provider = "something-else"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown provider")
	}

	cfg.Provider = "mock"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("mock needs no key, got: %v", err)
	}
}
