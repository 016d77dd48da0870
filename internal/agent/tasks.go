package agent

import (
	"context"
	"fmt"

	"github.com/arundaya/parlo/internal/store"
)

// Task is one assigned practice item handed to the practice screen.
type Task struct {
	ItemID   int64
	Scenario string
	Focus    string
	Level    int
	Prompt   string
}

// TaskSource serves the "My Plan" mode: it hands out the next open plan
// item, synthesizing one from the learner's weakest facet when the queue
// is empty.
type TaskSource struct {
	profiles store.ProfileRepo
	plans    store.PlanRepo
}

func NewTaskSource(profiles store.ProfileRepo, plans store.PlanRepo) *TaskSource {
	return &TaskSource{profiles: profiles, plans: plans}
}

// Next returns the task to practice now.
func (t *TaskSource) Next(ctx context.Context) (Task, error) {
	item, err := t.plans.FirstOpenItem(ctx)
	if err != nil {
		return Task{}, fmt.Errorf("next task: %w", err)
	}

	if item == nil {
		prof, err := t.profiles.Get(ctx)
		if err != nil {
			return Task{}, fmt.Errorf("next task: %w", err)
		}
		focus := weakestFocus(prof)
		if err := t.plans.AppendItems(ctx, []store.PlanItem{{
			Scenario: scenarioForFocus(focus),
			Focus:    focus,
			Level:    prof.Level,
			Prompt:   taskPrompt(focus, prof.Level),
		}}); err != nil {
			return Task{}, fmt.Errorf("next task: %w", err)
		}
		item, err = t.plans.FirstOpenItem(ctx)
		if err != nil || item == nil {
			return Task{}, fmt.Errorf("next task: item vanished after insert: %w", err)
		}
	}

	return Task{
		ItemID:   item.ID,
		Scenario: item.Scenario,
		Focus:    item.Focus,
		Level:    item.Level,
		Prompt:   item.Prompt,
	}, nil
}

// Complete marks an assigned task done. Best-effort at the call site.
func (t *TaskSource) Complete(ctx context.Context, itemID int64) error {
	return t.plans.CompleteItem(ctx, itemID)
}

// EnqueuePlan turns a generated Plan into a queued item.
func (t *TaskSource) EnqueuePlan(ctx context.Context, p Plan) error {
	return t.plans.AppendItems(ctx, []store.PlanItem{{
		Scenario: p.Scenario,
		Focus:    "plan",
		Level:    p.Level,
		Prompt:   p.Opening(),
	}})
}

// weakestFocus picks the facet with the lowest moving average.
func weakestFocus(p store.Profile) string {
	focus, best := "pron", p.MAPron
	for _, c := range []struct {
		name string
		ma   float64
	}{
		{"gram", p.MAGrammar},
		{"fluency", p.MAFluency},
		{"vocab", p.MAVocabulary},
	} {
		if c.ma < best {
			focus, best = c.name, c.ma
		}
	}
	return focus
}

// scenarioForFocus maps a weak facet to the scenario that exercises it.
func scenarioForFocus(focus string) string {
	switch focus {
	case "pron":
		return "Daily Conversation"
	case "gram":
		return "Business Meeting"
	case "fluency":
		return "Travel Situations"
	case "vocab":
		return "Job Interview"
	default:
		return "Daily Conversation"
	}
}

var levelNames = map[int]string{
	1: "Beginner (A1-A2)",
	2: "Pre-Intermediate (A2-B1)",
	3: "Intermediate (B1-B2)",
	4: "Upper-Intermediate (B2)",
	5: "Advanced (C1)",
}

var focusGuidelines = map[string]string{
	"pron":    "Focus on clear vowel/consonant sounds and word stress. Keep sentences short.",
	"gram":    "Use correct tense and articles. Try to self-correct one mistake.",
	"fluency": "Keep talking without long pauses; use fillers like 'well', 'let me think'.",
	"vocab":   "Use 2-3 specific terms and 1 collocation appropriate to the topic.",
}

// taskPrompt synthesizes the assigned task's opening instruction.
func taskPrompt(focus string, level int) string {
	levelText, ok := levelNames[level]
	if !ok {
		levelText = "Intermediate"
	}
	guideline, ok := focusGuidelines[focus]
	if !ok {
		guideline = "Do your best and speak clearly."
	}
	return fmt.Sprintf("Level: %s. Focus: %s.\nStart by asking the learner a question.\nGuideline: %s",
		levelText, focus, guideline)
}
