package agent

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/arundaya/parlo/internal/store"
)

func openTaskSource(t *testing.T) (*TaskSource, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return NewTaskSource(s.ProfileRepo(), s.PlanRepo()), s
}

func TestTaskSourceSynthesizesWhenEmpty(t *testing.T) {
	ts, _ := openTaskSource(t)
	ctx := context.Background()

	task, err := ts.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if task.ItemID == 0 {
		t.Error("expected a persisted item")
	}
	// Fresh profile has all-zero averages; ties resolve to pronunciation.
	if task.Focus != "pron" || task.Scenario != "Daily Conversation" {
		t.Errorf("task = %+v", task)
	}
	if task.Prompt == "" {
		t.Error("expected a synthesized prompt")
	}

	// Asking again without completing returns the same item.
	again, err := ts.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if again.ItemID != task.ItemID {
		t.Errorf("expected same open item, got %d then %d", task.ItemID, again.ItemID)
	}
}

func TestTaskSourceCompleteAdvances(t *testing.T) {
	ts, s := openTaskSource(t)
	ctx := context.Background()

	err := s.PlanRepo().AppendItems(ctx, []store.PlanItem{
		{Scenario: "Business Meeting", Focus: "gram", Level: 2, Prompt: "first"},
		{Scenario: "Travel Situations", Focus: "fluency", Level: 2, Prompt: "second"},
	})
	if err != nil {
		t.Fatalf("AppendItems: %v", err)
	}

	task, err := ts.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if task.Prompt != "first" {
		t.Errorf("Prompt = %q", task.Prompt)
	}

	if err := ts.Complete(ctx, task.ItemID); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	task, err = ts.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if task.Prompt != "second" {
		t.Errorf("Prompt = %q, want second", task.Prompt)
	}
}

func TestEnqueuePlan(t *testing.T) {
	ts, _ := openTaskSource(t)
	ctx := context.Background()

	plan := Plan{
		Scenario:     "Job Interview",
		Level:        3,
		StarterTurns: []string{"Tell me about yourself."},
	}
	if err := ts.EnqueuePlan(ctx, plan); err != nil {
		t.Fatalf("EnqueuePlan: %v", err)
	}

	task, err := ts.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if task.Scenario != "Job Interview" || task.Prompt != "Tell me about yourself." {
		t.Errorf("task = %+v", task)
	}
}
