package assess

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/arundaya/parlo/internal/convo"
	"github.com/arundaya/parlo/internal/llm"
)

// historyCap bounds how many turns are sent to the scorer.
const historyCap = 40

// fallbackComment is shown when nothing structured could be recovered.
const fallbackComment = "No structured feedback could be parsed."

// ScoringError reports that the scorer call itself failed; the session
// still ends, with a generic failure message instead of scores.
type ScoringError struct {
	Err error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("scoring failed: %v", e.Err)
}

func (e *ScoringError) Unwrap() error { return e.Err }

// Service requests the end-of-session assessment.
type Service struct {
	provider llm.Provider
}

func NewService(p llm.Provider) *Service {
	return &Service{provider: p}
}

// feedbackSchema keeps the scorer honest about the shape; facet bounds
// are enforced by clamping, not by the schema, so a sloppy-but-parseable
// response still gets through.
var feedbackSchema = &llm.Schema{
	Name: "session-feedback",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"scores": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"pronunciation": map[string]any{"type": "number"},
					"grammar":       map[string]any{"type": "number"},
					"fluency":       map[string]any{"type": "number"},
					"vocabulary":    map[string]any{"type": "number"},
					"coherence":     map[string]any{"type": "number"},
					"overall":       map[string]any{"type": "number"},
				},
			},
			"descriptors": map[string]any{"type": "object"},
			"comment":     map[string]any{"type": "string"},
			"standards":   map[string]any{"type": "object"},
		},
		"required": []any{"scores", "comment"},
	},
}

const feedbackSystemPrompt = "You are an impartial English speaking examiner.\n" +
	"Evaluate ONLY the USER's performance across this session.\n" +
	"Return STRICT JSON with EXACT keys (no prose, no code fences):\n" +
	"{\n" +
	"  \"scores\": {\n" +
	"    \"pronunciation\": number 0-10,\n" +
	"    \"grammar\": number 0-10,\n" +
	"    \"fluency\": number 0-10,\n" +
	"    \"vocabulary\": number 0-10,\n" +
	"    \"coherence\": number 0-10,\n" +
	"    \"overall\": number 0-10\n" +
	"  },\n" +
	"  \"descriptors\": {\n" +
	"    \"pronunciation\": \"1-2 sentences (segmentals/suprasegmentals/intelligibility)\",\n" +
	"    \"grammar\": \"1-2 sentences (range & accuracy; common errors)\",\n" +
	"    \"fluency\": \"1-2 sentences (rate, pauses, self-correction)\",\n" +
	"    \"vocabulary\": \"1-2 sentences (range/precision/collocations)\",\n" +
	"    \"coherence\": \"1-2 sentences (organization, cohesion, discourse markers)\"\n" +
	"  },\n" +
	"  \"comment\": \"One concise paragraph with strengths + 2-3 specific improvements\",\n" +
	"  \"standards\": {\"rubric\": \"CEFR-aligned v1\", \"notes\": \"Descriptors adapted/operationalized for automated rating\"}\n" +
	"}\n" +
	"Do NOT add any text outside JSON."

// Score produces the session Assessment. Objective metrics are always
// attached since they are computed locally. A transport-level failure
// returns (metrics-only assessment, *ScoringError); anything the model
// returned, however malformed, becomes a usable assessment instead.
func (s *Service) Score(ctx context.Context, conv *convo.Conversation, durationMin float64) (Assessment, error) {
	metrics := ComputeMetrics(userUtterances(conv), durationMin)

	req := llm.Request{
		System:      feedbackSystemPrompt,
		Messages:    toMessages(conv.Tail(historyCap)),
		Schema:      feedbackSchema,
		Temperature: 0.2,
		MaxTokens:   1024,
	}

	resp, err := s.provider.Generate(llm.WithPurpose(ctx, "feedback"), req)
	if err != nil {
		if raw := salvageableContent(err); raw != "" {
			return assessmentFromText(raw, metrics), nil
		}
		return Assessment{Metrics: &metrics, Comment: fallbackComment},
			&ScoringError{Err: err}
	}

	var obj map[string]any
	if jsonErr := json.Unmarshal(resp.Content, &obj); jsonErr != nil {
		return assessmentFromText(string(resp.Content), metrics), nil
	}
	return assessmentFromPayload(obj, metrics), nil
}

// salvageableContent digs partial model output out of validation and
// truncation errors.
func salvageableContent(err error) string {
	var invErr *llm.ErrInvalidResponse
	if errors.As(err, &invErr) {
		return string(invErr.Content)
	}
	var maxTok *llm.ErrMaxTokensExceeded
	if errors.As(err, &maxTok) {
		return string(maxTok.Content)
	}
	return ""
}

func assessmentFromText(text string, metrics ObjectiveMetrics) Assessment {
	if obj, ok := ExtractPayload(text); ok {
		return assessmentFromPayload(obj, metrics)
	}
	comment := strings.TrimSpace(text)
	if comment == "" {
		comment = fallbackComment
	}
	return Assessment{Comment: comment, Metrics: &metrics}
}

func assessmentFromPayload(obj map[string]any, metrics ObjectiveMetrics) Assessment {
	scores, comment := NormalizeScores(obj)
	a := Assessment{
		Scores:  &scores,
		Comment: comment,
		Metrics: &metrics,
	}

	if d, ok := obj["descriptors"].(map[string]any); ok {
		a.Descriptors = Descriptors{
			Pronunciation: stringAt(d, "pronunciation"),
			Grammar:       stringAt(d, "grammar"),
			Fluency:       stringAt(d, "fluency"),
			Vocabulary:    stringAt(d, "vocabulary"),
			Coherence:     stringAt(d, "coherence"),
		}
	}

	a.Standards = Standards{Rubric: "CEFR-aligned v1"}
	if st, ok := obj["standards"].(map[string]any); ok {
		if r := stringAt(st, "rubric"); r != "" {
			a.Standards.Rubric = r
		}
		a.Standards.Notes = stringAt(st, "notes")
	}

	return a
}

func stringAt(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func userUtterances(conv *convo.Conversation) []string {
	var out []string
	for _, t := range conv.Turns() {
		if t.Role == convo.RoleUser {
			out = append(out, t.Content)
		}
	}
	return out
}

func toMessages(turns []convo.Turn) []llm.Message {
	msgs := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		if t.Role == convo.RoleSystem {
			continue
		}
		role := llm.RoleUser
		if t.Role == convo.RoleAssistant {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: t.Content})
	}
	return msgs
}
