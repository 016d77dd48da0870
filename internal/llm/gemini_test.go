package llm

import (
	"testing"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.0-flash"},
		{"gemini-pro", "gemini-2.0-pro"},
		{"gemini-2.0-flash", "gemini-2.0-flash"}, // Pass-through
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, geminiModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"reply": map[string]any{"type": "string"},
			"scores": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "number"},
			},
			"facet": map[string]any{"type": "string", "enum": []any{"grammar", "fluency", "vocabulary"}},
			"level": map[string]any{"type": "integer"},
		},
		"required": []any{"reply", "level"},
	}

	schema := buildGeminiSchema(def)

	if schema.Type != "OBJECT" {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if len(schema.Properties) != 4 {
		t.Fatalf("expected 4 properties, got %d", len(schema.Properties))
	}
	if schema.Properties["reply"].Type != "STRING" {
		t.Fatalf("expected STRING for reply, got %s", schema.Properties["reply"].Type)
	}
	if schema.Properties["level"].Type != "INTEGER" {
		t.Fatalf("expected INTEGER for level, got %s", schema.Properties["level"].Type)
	}
	if len(schema.Properties["facet"].Enum) != 3 {
		t.Fatalf("expected 3 enum values, got %d", len(schema.Properties["facet"].Enum))
	}
	if schema.Properties["scores"].Type != "ARRAY" {
		t.Fatalf("expected ARRAY for scores, got %s", schema.Properties["scores"].Type)
	}
	if schema.Properties["scores"].Items.Type != "NUMBER" {
		t.Fatalf("expected NUMBER for scores items, got %s", schema.Properties["scores"].Items.Type)
	}
	if len(schema.Required) != 2 {
		t.Fatalf("expected 2 required fields, got %d", len(schema.Required))
	}
}
