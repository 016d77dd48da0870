package llm

import (
	"context"
	"encoding/json"
)

// Provider is the abstraction every remote language-model call goes
// through: dialogue turns, session scoring, reflection and planning all
// build a Request and hand it to a Provider.
type Provider interface {
	// Generate sends the request and returns the model output. When the
	// request carries a Schema the provider asks for JSON output and the
	// returned Content is validated against that schema.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the configured model identifier.
	ModelID() string
}

// Request describes one model call.
type Request struct {
	// System sets the model's role and constraints.
	System string

	// Messages is the conversation to respond to.
	Messages []Message

	// Schema, when set, demands JSON output conforming to it. The system
	// prompt is expected to describe the shape; the provider enforces
	// JSON mode and validates the result.
	Schema *Schema

	// MaxTokens caps the response length. Zero means provider default.
	MaxTokens int

	// Temperature in [0,1]; zero is deterministic.
	Temperature float64
}

// Message is one turn sent to the model.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema names and defines the JSON structure a structured response must
// satisfy.
type Schema struct {
	// Name identifies the schema, kebab-case ("session-feedback").
	Name string

	// Definition is the JSON Schema as a map.
	Definition map[string]any
}

// Response is the model output.
type Response struct {
	// Content is raw text, or the validated JSON object when the request
	// carried a Schema.
	Content json.RawMessage

	// Usage reports token consumption.
	Usage Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Usage tracks token counts for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// resolveModel maps a friendly model name through the given table,
// passing unknown names straight through as literal model IDs.
func resolveModel(name string, table map[string]string) string {
	if id, ok := table[name]; ok {
		return id
	}
	return name
}
