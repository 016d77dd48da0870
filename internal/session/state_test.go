package session

import (
	"errors"
	"testing"
	"time"

	"github.com/arundaya/parlo/internal/agent"
	"github.com/arundaya/parlo/internal/assess"
)

func newState() *State {
	return New("2", "Daily Conversation", "Hi! How's your day so far?")
}

func TestNewState(t *testing.T) {
	s := newState()
	if s.Phase != PhaseInProgress || s.Recording != RecordingIdle {
		t.Fatalf("fresh state: phase=%v recording=%v", s.Phase, s.Recording)
	}
	if s.Conversation.Len() != 1 {
		t.Fatalf("expected a single seed turn, got %d", s.Conversation.Len())
	}
	if s.ID == "" {
		t.Fatal("expected a session id")
	}
}

func TestCaptureCycle(t *testing.T) {
	s := newState()

	if err := s.BeginCapture(); err != nil {
		t.Fatalf("BeginCapture: %v", err)
	}
	if s.Recording != RecordingCapturing {
		t.Fatalf("Recording = %v", s.Recording)
	}

	// Second begin while capturing must be rejected without state change.
	if err := s.BeginCapture(); !errors.Is(err, ErrNotIdle) {
		t.Fatalf("expected ErrNotIdle, got %v", err)
	}
	if s.Recording != RecordingCapturing {
		t.Fatal("rejected begin must not change state")
	}

	if err := s.EndCapture(); err != nil {
		t.Fatalf("EndCapture: %v", err)
	}
	if s.Recording != RecordingTranscribing {
		t.Fatalf("Recording = %v", s.Recording)
	}

	// Begin while transcribing is also rejected.
	if err := s.BeginCapture(); !errors.Is(err, ErrNotIdle) {
		t.Fatalf("expected ErrNotIdle, got %v", err)
	}

	if err := s.TranscriptionDone(); err != nil {
		t.Fatalf("TranscriptionDone: %v", err)
	}
	if s.Recording != RecordingIdle {
		t.Fatalf("Recording = %v", s.Recording)
	}
}

func TestCaptureAborted(t *testing.T) {
	s := newState()
	if err := s.BeginCapture(); err != nil {
		t.Fatal(err)
	}
	s.CaptureAborted()
	if s.Recording != RecordingIdle {
		t.Fatalf("Recording = %v, want idle after abort", s.Recording)
	}
	// Aborting while idle is harmless.
	s.CaptureAborted()
	if s.Recording != RecordingIdle {
		t.Fatal("abort while idle must be a no-op")
	}
}

func TestCaptureBlockedDuringDialogue(t *testing.T) {
	s := newState()
	if err := s.BeginDialogue(); err != nil {
		t.Fatal(err)
	}
	if err := s.BeginCapture(); !errors.Is(err, ErrDialoguePending) {
		t.Fatalf("expected ErrDialoguePending, got %v", err)
	}
	s.DialogueDone()
	if err := s.BeginCapture(); err != nil {
		t.Fatalf("BeginCapture after dialogue done: %v", err)
	}
}

func TestEndingGuards(t *testing.T) {
	s := newState()

	// End while capturing: rejected, phase unchanged.
	if err := s.BeginCapture(); err != nil {
		t.Fatal(err)
	}
	if err := s.BeginEnding(); !errors.Is(err, ErrTurnInFlight) {
		t.Fatalf("expected ErrTurnInFlight, got %v", err)
	}
	if s.Phase != PhaseInProgress {
		t.Fatal("phase must stay InProgress on rejected end")
	}
	if err := s.EndCapture(); err != nil {
		t.Fatal(err)
	}
	if err := s.BeginEnding(); !errors.Is(err, ErrTurnInFlight) {
		t.Fatalf("expected ErrTurnInFlight while transcribing, got %v", err)
	}
	if err := s.TranscriptionDone(); err != nil {
		t.Fatal(err)
	}

	// End while a dialogue reply is pending: rejected.
	if err := s.BeginDialogue(); err != nil {
		t.Fatal(err)
	}
	if err := s.BeginEnding(); !errors.Is(err, ErrTurnInFlight) {
		t.Fatalf("expected ErrTurnInFlight, got %v", err)
	}
	s.DialogueDone()

	// Now legal.
	if !s.CanEnd() {
		t.Fatal("CanEnd should be true")
	}
	if err := s.BeginEnding(); err != nil {
		t.Fatalf("BeginEnding: %v", err)
	}
	if s.Phase != PhaseEnding {
		t.Fatalf("Phase = %v", s.Phase)
	}

	// Double end: the second request is a no-op.
	if err := s.BeginEnding(); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("expected ErrNotInProgress, got %v", err)
	}

	s.MarkEnded()
	if s.Phase != PhaseEnded {
		t.Fatalf("Phase = %v", s.Phase)
	}
	if err := s.BeginEnding(); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("expected ErrNotInProgress after Ended, got %v", err)
	}
	if err := s.BeginCapture(); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("expected capture rejected after Ended, got %v", err)
	}
}

func TestSequenceStaleness(t *testing.T) {
	s := newState()

	first := s.NextSeq(CatTranscription)
	second := s.NextSeq(CatTranscription)

	if s.Fresh(CatTranscription, first) {
		t.Error("superseded request must be stale")
	}
	if !s.Fresh(CatTranscription, second) {
		t.Error("latest request must be fresh")
	}
	// Categories are independent.
	if !s.Fresh(CatDialogue, s.NextSeq(CatDialogue)) {
		t.Error("other category unaffected")
	}
}

func TestReflectionPipelineGuards(t *testing.T) {
	s := newState()

	if err := s.BeginReflection(); !errors.Is(err, ErrNotEnded) {
		t.Fatalf("expected ErrNotEnded, got %v", err)
	}

	s.Phase = PhaseEnded
	if err := s.BeginReflection(); err != nil {
		t.Fatalf("BeginReflection: %v", err)
	}
	if err := s.BeginReflection(); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}

	// Plan cannot start before reflection lands.
	if err := s.BeginPlan(); !errors.Is(err, ErrNotEnded) {
		t.Fatalf("expected plan blocked without reflection, got %v", err)
	}

	s.ReflectionDone(agent.Reflection{Summary: "ok"})
	if s.ReflectionRunning {
		t.Error("ReflectionRunning should clear")
	}
	if err := s.BeginPlan(); err != nil {
		t.Fatalf("BeginPlan: %v", err)
	}
	s.PlanDone(nil)
	if s.Plan != nil {
		t.Error("failed plan stays absent")
	}
	if s.Reflection == nil || s.Reflection.Summary != "ok" {
		t.Error("reflection must survive a failed plan")
	}
}

func TestDurationMin(t *testing.T) {
	s := newState()
	s.StartedAt = time.Now().Add(-90 * time.Second)
	got := s.DurationMin(time.Now())
	if got < 1.49 || got > 1.51 {
		t.Errorf("DurationMin = %v, want ~1.5", got)
	}

	// A clock that moved backwards floors at zero.
	s.StartedAt = time.Now().Add(time.Hour)
	if got := s.DurationMin(time.Now()); got != 0 {
		t.Errorf("DurationMin = %v, want 0", got)
	}
}

func TestStartNextResets(t *testing.T) {
	s := newState()
	s.Conversation.Append("user", "hello")
	s.Conversation.Append("assistant", "hi there")
	s.Phase = PhaseEnded
	s.Assessment = &assess.Assessment{Comment: "done"}
	refl := agent.FallbackReflection()
	s.Reflection = &refl
	s.Plan = &agent.Plan{Scenario: "Job Interview"}
	s.TaskItemID = 42
	oldSeq := s.NextSeq(CatFeedback)
	oldID := s.ID

	s.StartNext("1", "Job Interview", "Tell me about yourself.")

	if s.Phase != PhaseInProgress || s.Recording != RecordingIdle {
		t.Fatalf("phase=%v recording=%v after StartNext", s.Phase, s.Recording)
	}
	if s.Conversation.Len() != 1 {
		t.Fatalf("expected single seed turn, got %d", s.Conversation.Len())
	}
	if s.Conversation.Last().Content != "Tell me about yourself." {
		t.Errorf("seed = %q", s.Conversation.Last().Content)
	}
	if s.Assessment != nil || s.Reflection != nil || s.Plan != nil {
		t.Error("results must be cleared")
	}
	if s.TaskItemID != 0 {
		t.Error("task binding must be cleared")
	}
	if s.ID == oldID {
		t.Error("expected a new session id")
	}
	if s.Fresh(CatFeedback, oldSeq) {
		t.Error("pre-reset requests must be stale after StartNext")
	}
}

func TestStartNextFromAnyPhase(t *testing.T) {
	for _, phase := range []Phase{PhaseInProgress, PhaseEnding, PhaseEnded} {
		s := newState()
		s.Phase = phase
		s.Recording = RecordingTranscribing
		s.StartNext("2", "Daily Conversation", "Hi again!")
		if s.Phase != PhaseInProgress || s.Recording != RecordingIdle {
			t.Errorf("from %v: phase=%v recording=%v", phase, s.Phase, s.Recording)
		}
	}
}
