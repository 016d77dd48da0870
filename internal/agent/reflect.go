package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/arundaya/parlo/internal/assess"
	"github.com/arundaya/parlo/internal/convo"
	"github.com/arundaya/parlo/internal/llm"
)

// reflectHistoryCap bounds the dialogue sent to the critic.
const reflectHistoryCap = 60

// Caps on what the model hands back; anything beyond is dropped.
const (
	maxSummaryLen    = 2000
	maxErrorPatterns = 5
	maxVocabTargets  = 2
	maxObjectives    = 5
	maxExamples      = 5
)

// ReflectionError reports that the critic call failed; callers substitute
// FallbackReflection.
type ReflectionError struct {
	Err error
}

func (e *ReflectionError) Error() string {
	return fmt.Sprintf("reflection failed: %v", e.Err)
}

func (e *ReflectionError) Unwrap() error { return e.Err }

// Reflector produces a Reflection from a finished session.
type Reflector struct {
	provider llm.Provider
}

func NewReflector(p llm.Provider) *Reflector {
	return &Reflector{provider: p}
}

var reflectionSchema = &llm.Schema{
	Name: "session-reflection",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{"type": "string"},
			"error_patterns": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "object"},
			},
			"vocab_targets": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "object"},
			},
			"objectives_next": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []any{"summary"},
	},
}

const reflectSystemPrompt = "You are an English speaking coach (critic). Return STRICT JSON only:\n" +
	"{\n" +
	"  \"summary\": \"3-5 sentences recap\",\n" +
	"  \"error_patterns\": [\n" +
	"    {\"tag\":\"articles|tense|word_stress|prepositions|run_on|filler\",\n" +
	"     \"description\":\"short explanation\",\n" +
	"     \"examples\":[\"wrong -> better\",\"...\"],\n" +
	"     \"weight\": 0..3}\n" +
	"  ],\n" +
	"  \"vocab_targets\": [{\"topic\":\"job_interview\",\"items\":[\"term1\",\"term2\",\"term3\"]}],\n" +
	"  \"objectives_next\": [\"objective1\",\"objective2\"]\n" +
	"}\n" +
	"No extra text."

// Reflect asks the critic to review the conversation and its assessment.
// assessment may be nil when scoring never succeeded.
func (r *Reflector) Reflect(ctx context.Context, conv *convo.Conversation, assessment *assess.Assessment) (Reflection, error) {
	payload := map[string]any{
		"dialogue": conv.Tail(reflectHistoryCap),
	}
	if assessment != nil {
		payload["feedback"] = feedbackPayload(assessment)
	} else {
		payload["feedback"] = nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Reflection{}, &ReflectionError{Err: err}
	}

	resp, err := r.provider.Generate(llm.WithPurpose(ctx, "reflection"), llm.Request{
		System:      reflectSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: string(body)}},
		Schema:      reflectionSchema,
		Temperature: 0.2,
		MaxTokens:   1024,
	})
	if err != nil {
		return Reflection{}, &ReflectionError{Err: err}
	}

	var out Reflection
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return Reflection{}, &ReflectionError{Err: err}
	}
	return trimReflection(out), nil
}

func trimReflection(r Reflection) Reflection {
	if len(r.Summary) > maxSummaryLen {
		r.Summary = r.Summary[:maxSummaryLen]
	}
	if len(r.ErrorPatterns) > maxErrorPatterns {
		r.ErrorPatterns = r.ErrorPatterns[:maxErrorPatterns]
	}
	for i := range r.ErrorPatterns {
		if len(r.ErrorPatterns[i].Examples) > maxExamples {
			r.ErrorPatterns[i].Examples = r.ErrorPatterns[i].Examples[:maxExamples]
		}
	}
	if len(r.VocabTargets) > maxVocabTargets {
		r.VocabTargets = r.VocabTargets[:maxVocabTargets]
	}
	if len(r.ObjectivesNext) > maxObjectives {
		r.ObjectivesNext = r.ObjectivesNext[:maxObjectives]
	}
	return r
}

// feedbackPayload flattens the assessment for the critic prompt.
func feedbackPayload(a *assess.Assessment) map[string]any {
	out := map[string]any{"comment": a.Comment}
	if a.Scores != nil {
		scores := map[string]any{
			"pronunciation": a.Scores.Pronunciation,
			"grammar":       a.Scores.Grammar,
			"fluency":       a.Scores.Fluency,
			"vocabulary":    a.Scores.Vocabulary,
			"overall":       a.Scores.Overall,
		}
		if a.Scores.Coherence != nil {
			scores["coherence"] = *a.Scores.Coherence
		}
		out["scores"] = scores
	}
	if a.Metrics != nil {
		out["objective_metrics"] = a.Metrics
	}
	return out
}
