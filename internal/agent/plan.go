package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/arundaya/parlo/internal/llm"
	"github.com/arundaya/parlo/internal/store"
)

const (
	maxPlanObjectives = 6
	maxPlanRubric     = 6
	maxStarterTurns   = 3

	defaultTargetTimeMin = 7
)

// PlanError reports that the planner call failed; the plan section is
// simply omitted.
type PlanError struct {
	Err error
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("planning failed: %v", e.Err)
}

func (e *PlanError) Unwrap() error { return e.Err }

// Planner produces a plan for the next session from the learner profile
// and the latest reflection.
type Planner struct {
	provider llm.Provider
}

func NewPlanner(p llm.Provider) *Planner {
	return &Planner{provider: p}
}

var planSchema = &llm.Schema{
	Name: "next-session-plan",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"scenario":        map[string]any{"type": "string"},
			"level":           map[string]any{"type": "integer"},
			"objectives":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"rubric":          map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"starter_turns":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"target_time_min": map[string]any{"type": "integer"},
		},
		"required": []any{"scenario"},
	},
}

const planSystemPrompt = "You are a session planner. Produce JSON only:\n" +
	"{\n" +
	"  \"scenario\":\"Job Interview|Daily Conversation|Business Meeting|Travel Situations|...\",\n" +
	"  \"level\": 1..5,\n" +
	"  \"objectives\": [\"...\"],\n" +
	"  \"rubric\": [\"...\"],\n" +
	"  \"starter_turns\": [\"...\"],\n" +
	"  \"target_time_min\": 5|7|10\n" +
	"}\n" +
	"Prioritize weakest skills & recent error patterns; weave 2-3 vocab targets.\n" +
	"No extra text."

// Plan asks the planner for the next session outline. Missing fields are
// filled with safe defaults so a partially-formed answer still yields a
// usable plan.
func (p *Planner) Plan(ctx context.Context, profile store.Profile, refl Reflection) (Plan, error) {
	payload := map[string]any{
		"profile": map[string]any{
			"level": profile.Level,
			"ma": map[string]any{
				"pron": profile.MAPron, "gram": profile.MAGrammar,
				"flu": profile.MAFluency, "vocab": profile.MAVocabulary,
				"overall": profile.MAOverall,
			},
		},
		"error_patterns":  refl.ErrorPatterns,
		"objectives_next": refl.ObjectivesNext,
		"vocab_targets":   refl.VocabTargets,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Plan{}, &PlanError{Err: err}
	}

	resp, err := p.provider.Generate(llm.WithPurpose(ctx, "plan"), llm.Request{
		System:      planSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: string(body)}},
		Schema:      planSchema,
		Temperature: 0.3,
		MaxTokens:   1024,
	})
	if err != nil {
		return Plan{}, &PlanError{Err: err}
	}

	var out Plan
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return Plan{}, &PlanError{Err: err}
	}
	return fillPlanDefaults(out, profile.Level), nil
}

func fillPlanDefaults(p Plan, profileLevel int) Plan {
	if p.Scenario == "" {
		p.Scenario = "Daily Conversation"
	}
	if p.Level < 1 || p.Level > 5 {
		p.Level = profileLevel
	}
	if len(p.Objectives) > maxPlanObjectives {
		p.Objectives = p.Objectives[:maxPlanObjectives]
	}
	if len(p.Rubric) == 0 {
		p.Rubric = []string{"Speak clearly", "Use correct tense", "Use 2 specific terms"}
	} else if len(p.Rubric) > maxPlanRubric {
		p.Rubric = p.Rubric[:maxPlanRubric]
	}
	if len(p.StarterTurns) == 0 {
		p.StarterTurns = []string{"Tell me about your day."}
	} else if len(p.StarterTurns) > maxStarterTurns {
		p.StarterTurns = p.StarterTurns[:maxStarterTurns]
	}
	if p.TargetTimeMin <= 0 {
		p.TargetTimeMin = defaultTargetTimeMin
	}
	return p
}
