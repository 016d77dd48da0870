package llm

import (
	"fmt"
	"os"
	"time"
)

// GroqBaseURL is the OpenAI-compatible endpoint Groq exposes for both
// chat completions and whisper transcriptions.
const GroqBaseURL = "https://api.groq.com/openai/v1"

// Config holds provider selection and per-provider settings.
type Config struct {
	// Provider selects the backend: "groq", "openai", "anthropic", "mock".
	Provider string

	Groq      GroqConfig
	OpenAI    OpenAIConfig
	Anthropic AnthropicConfig
	Gemini    GeminiConfig
	Retry     RetryConfig

	// Timeout bounds a single request including retries. Default 60s;
	// transcription uploads get their own, longer budget.
	Timeout time.Duration
}

// GroqConfig configures the Groq backend (OpenAI-compatible API).
type GroqConfig struct {
	APIKey       string
	Model        string // chat model, default "llama-3.1-8b-instant"
	WhisperModel string // transcription model, default "whisper-large-v3"
}

// OpenAIConfig configures the OpenAI backend or any compatible API via
// BaseURL.
type OpenAIConfig struct {
	APIKey       string
	Model        string // default "gpt-4o-mini"
	WhisperModel string // default "whisper-1"
	BaseURL      string // optional override
}

// AnthropicConfig configures the Anthropic backend. Anthropic has no
// transcription endpoint, so Groq/OpenAI whisper settings still apply to
// speech-to-text when this provider serves dialogue.
type AnthropicConfig struct {
	APIKey string
	Model  string // default "claude-haiku"
}

// GeminiConfig configures the Google Gemini backend. Like Anthropic it
// has no transcription endpoint.
type GeminiConfig struct {
	APIKey string
	Model  string // default "gemini-flash"
}

// RetryConfig tunes retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns the defaults Parlo ships with.
func DefaultConfig() Config {
	return Config{
		Provider: "groq",
		Groq: GroqConfig{
			Model:        "llama-3.1-8b-instant",
			WhisperModel: "whisper-large-v3",
		},
		OpenAI: OpenAIConfig{
			Model:        "gpt-4o-mini",
			WhisperModel: "whisper-1",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// ConfigFromEnv builds a Config from PARLO_* environment variables,
// falling back to defaults, then to bare API-key discovery.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("PARLO_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}

	if k := os.Getenv("PARLO_GROQ_API_KEY"); k != "" {
		cfg.Groq.APIKey = k
	}
	if m := os.Getenv("PARLO_GROQ_MODEL"); m != "" {
		cfg.Groq.Model = m
	}
	if k := os.Getenv("PARLO_OPENAI_API_KEY"); k != "" {
		cfg.OpenAI.APIKey = k
	}
	if m := os.Getenv("PARLO_OPENAI_MODEL"); m != "" {
		cfg.OpenAI.Model = m
	}
	if u := os.Getenv("PARLO_OPENAI_BASE_URL"); u != "" {
		cfg.OpenAI.BaseURL = u
	}
	if k := os.Getenv("PARLO_ANTHROPIC_API_KEY"); k != "" {
		cfg.Anthropic.APIKey = k
	}
	if m := os.Getenv("PARLO_ANTHROPIC_MODEL"); m != "" {
		cfg.Anthropic.Model = m
	}
	if k := os.Getenv("PARLO_GEMINI_API_KEY"); k != "" {
		cfg.Gemini.APIKey = k
	}
	if m := os.Getenv("PARLO_GEMINI_MODEL"); m != "" {
		cfg.Gemini.Model = m
	}

	// Bare keys as a convenience when PARLO_* vars are unset.
	if cfg.Groq.APIKey == "" {
		cfg.Groq.APIKey = os.Getenv("GROQ_API_KEY")
	}
	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Anthropic.APIKey == "" {
		cfg.Anthropic.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	return cfg
}

// DiscoverConfig probes API-key env vars in priority order (Groq, then
// OpenAI, Anthropic, Gemini) and selects the first provider with a key.
// Returns false when none is configured.
func DiscoverConfig() (Config, bool) {
	cfg := ConfigFromEnv()

	if os.Getenv("PARLO_LLM_PROVIDER") != "" {
		return cfg, true
	}
	switch {
	case cfg.Groq.APIKey != "":
		cfg.Provider = "groq"
	case cfg.OpenAI.APIKey != "":
		cfg.Provider = "openai"
	case cfg.Anthropic.APIKey != "":
		cfg.Provider = "anthropic"
	case cfg.Gemini.APIKey != "":
		cfg.Provider = "gemini"
	default:
		return Config{}, false
	}
	return cfg, true
}

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	switch c.Provider {
	case "groq":
		if c.Groq.APIKey == "" {
			return fmt.Errorf("PARLO_GROQ_API_KEY is required for the groq provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("PARLO_OPENAI_API_KEY is required for the openai provider")
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("PARLO_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("PARLO_GEMINI_API_KEY is required for the gemini provider")
		}
	case "mock":
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
