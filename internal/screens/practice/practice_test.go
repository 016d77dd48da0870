package practice

import (
	"context"
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/arundaya/parlo/internal/agent"
	"github.com/arundaya/parlo/internal/assess"
	"github.com/arundaya/parlo/internal/convo"
	"github.com/arundaya/parlo/internal/dialogue"
	"github.com/arundaya/parlo/internal/llm"
	"github.com/arundaya/parlo/internal/scenario"
	sess "github.com/arundaya/parlo/internal/session"
	"github.com/arundaya/parlo/internal/speech"
	"github.com/arundaya/parlo/internal/store"
	"github.com/arundaya/parlo/internal/stt"
)

type stubScorer struct {
	a   assess.Assessment
	err error
}

func (s *stubScorer) Score(_ context.Context, _ *convo.Conversation, _ float64) (assess.Assessment, error) {
	return s.a, s.err
}

type stubReflector struct {
	r   agent.Reflection
	err error
}

func (s *stubReflector) Reflect(_ context.Context, _ *convo.Conversation, _ *assess.Assessment) (agent.Reflection, error) {
	return s.r, s.err
}

type stubPlanner struct {
	p   agent.Plan
	err error
}

func (s *stubPlanner) Plan(_ context.Context, _ store.Profile, _ agent.Reflection) (agent.Plan, error) {
	return s.p, s.err
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func scoredAssessment() assess.Assessment {
	return assess.Assessment{
		Scores: &assess.ScoreSet{
			Pronunciation: 7, Grammar: 6, Fluency: 7, Vocabulary: 6, Overall: 6.5,
		},
		Comment: "Good effort.",
	}
}

func testScreen() (*PracticeScreen, *speech.FakeRecorder, *stt.FakeTranscriber) {
	rec := &speech.FakeRecorder{}
	tr := &stt.FakeTranscriber{Transcripts: []string{"I had a good day"}}
	deps := Deps{
		Recorder:    rec,
		Speaker:     &speech.FakeSpeaker{},
		Transcriber: tr,
		Dialogue:    dialogue.NewService(llm.NewMockProvider()),
		Scorer:      &stubScorer{a: scoredAssessment()},
		Reflector:   &stubReflector{r: agent.Reflection{Summary: "Solid session."}},
		Planner:     &stubPlanner{p: agent.Plan{Scenario: "Business Meeting", Level: 3, StarterTurns: []string{"Shall we begin the standup?"}}},
	}
	s := New(deps, scenario.ByID("2"))
	return s, rec, tr
}

func TestPracticeScreen_Title(t *testing.T) {
	s, _, _ := testScreen()
	if s.Title() != "Practice" {
		t.Errorf("Title = %q, want %q", s.Title(), "Practice")
	}
}

func TestPracticeScreen_OpeningSeeded(t *testing.T) {
	s, _, _ := testScreen()
	if s.state.Conversation.Len() != 1 {
		t.Fatalf("conversation length = %d, want 1", s.state.Conversation.Len())
	}
	last := s.state.Conversation.Last()
	if last.Role != convo.RoleAssistant {
		t.Errorf("opening role = %q, want assistant", last.Role)
	}
}

func TestPracticeScreen_RecordToggle(t *testing.T) {
	s, rec, _ := testScreen()

	s.Update(keyPress(' '))
	if s.state.Recording != sess.RecordingCapturing {
		t.Fatalf("recording = %v, want Capturing", s.state.Recording)
	}
	if rec.Starts != 1 {
		t.Errorf("recorder starts = %d, want 1", rec.Starts)
	}

	_, cmd := s.Update(keyPress(' '))
	if s.state.Recording != sess.RecordingTranscribing {
		t.Fatalf("recording = %v, want Transcribing", s.state.Recording)
	}
	if cmd == nil {
		t.Error("expected a transcription command")
	}
}

func TestPracticeScreen_RecordStartFailure(t *testing.T) {
	s, rec, _ := testScreen()
	rec.StartErr = &speech.CapabilityError{Capability: "capture", Err: errors.New("no ffmpeg")}

	s.Update(keyPress(' '))
	if s.state.Recording != sess.RecordingIdle {
		t.Errorf("recording = %v, want Idle after failed start", s.state.Recording)
	}
	if s.statusMsg == "" {
		t.Error("expected a status message about the capture failure")
	}
}

func TestPracticeScreen_TranscriptStartsDialogue(t *testing.T) {
	s, _, _ := testScreen()
	s.Update(keyPress(' '))
	s.Update(keyPress(' '))

	seq := s.state.NextSeq(sess.CatTranscription)
	_, cmd := s.Update(transcriptMsg{Seq: seq, Text: "I had a good day"})

	if !s.state.DialoguePending {
		t.Error("expected dialogue to be pending after transcript")
	}
	if cmd == nil {
		t.Error("expected a dialogue command")
	}
	last := s.state.Conversation.Last()
	if last.Role != convo.RoleUser || last.Content != "I had a good day" {
		t.Errorf("last turn = %+v, want user transcript", last)
	}
}

func TestPracticeScreen_EmptyTranscriptSkipsDialogue(t *testing.T) {
	s, _, _ := testScreen()
	s.Update(keyPress(' '))
	s.Update(keyPress(' '))
	before := s.state.Conversation.Len()

	seq := s.state.NextSeq(sess.CatTranscription)
	_, cmd := s.Update(transcriptMsg{Seq: seq, Text: ""})

	if s.state.DialoguePending {
		t.Error("empty transcript must not trigger dialogue")
	}
	if cmd != nil {
		t.Error("expected no command for empty transcript")
	}
	if s.state.Conversation.Len() != before {
		t.Error("empty transcript must not add a turn")
	}
	if s.state.Recording != sess.RecordingIdle {
		t.Errorf("recording = %v, want Idle", s.state.Recording)
	}
}

func TestPracticeScreen_TranscriptErrorReturnsToIdle(t *testing.T) {
	s, _, _ := testScreen()
	s.Update(keyPress(' '))
	s.Update(keyPress(' '))

	seq := s.state.NextSeq(sess.CatTranscription)
	s.Update(transcriptMsg{Seq: seq, Err: errors.New("upload failed")})

	if s.state.Recording != sess.RecordingIdle {
		t.Errorf("recording = %v, want Idle after failure", s.state.Recording)
	}
	if s.statusMsg == "" {
		t.Error("expected a status message")
	}
	last := s.state.Conversation.Last()
	if last.Role != convo.RoleAssistant || last.Content != transcriptFailedReply {
		t.Errorf("last turn = %+v, want the transcription notice", last)
	}
}

func TestPracticeScreen_StaleTranscriptIgnored(t *testing.T) {
	s, _, _ := testScreen()
	s.Update(keyPress(' '))
	s.Update(keyPress(' '))

	stale := s.state.NextSeq(sess.CatTranscription)
	_ = s.state.NextSeq(sess.CatTranscription)
	before := s.state.Conversation.Len()

	s.Update(transcriptMsg{Seq: stale, Text: "old take"})

	if s.state.Conversation.Len() != before {
		t.Error("stale transcript must not add a turn")
	}
	if s.state.Recording != sess.RecordingTranscribing {
		t.Errorf("recording = %v, want Transcribing untouched", s.state.Recording)
	}
}

func TestPracticeScreen_PartnerReplyWithTip(t *testing.T) {
	s, _, _ := testScreen()
	s.Update(keyPress(' '))
	s.Update(keyPress(' '))
	tseq := s.state.NextSeq(sess.CatTranscription)
	s.Update(transcriptMsg{Seq: tseq, Text: "um, I basically had a good day"})

	seq := s.state.Seq(sess.CatDialogue)
	s.Update(partnerReplyMsg{Seq: seq, Text: "Glad to hear it! What made it good?"})

	if s.state.DialoguePending {
		t.Error("dialogue should no longer be pending")
	}
	last := s.state.Conversation.Last()
	if last.Role != convo.RoleAssistant {
		t.Fatalf("last role = %q, want assistant", last.Role)
	}
	if tip := s.tips[s.state.Conversation.Len()-1]; tip == "" {
		t.Error("expected a coaching tip on the assistant turn")
	}
}

func TestPracticeScreen_PartnerFailureFallsBack(t *testing.T) {
	s, _, _ := testScreen()
	s.Update(keyPress(' '))
	s.Update(keyPress(' '))
	tseq := s.state.NextSeq(sess.CatTranscription)
	s.Update(transcriptMsg{Seq: tseq, Text: "hello"})

	seq := s.state.Seq(sess.CatDialogue)
	s.Update(partnerReplyMsg{Seq: seq, Err: errors.New("rate limited")})

	last := s.state.Conversation.Last()
	if last.Role != convo.RoleAssistant || last.Content != fallbackReply {
		t.Errorf("last turn = %+v, want fallback reply", last)
	}
	if _, ok := s.tips[s.state.Conversation.Len()-1]; ok {
		t.Error("fallback reply must not carry a tip")
	}
}

func TestPracticeScreen_EndBlockedMidTurn(t *testing.T) {
	s, _, _ := testScreen()
	s.Update(keyPress(' ')) // capturing

	s.Update(keyPress('e'))
	if s.confirmEnd {
		t.Error("end confirmation must not open while capturing")
	}
	if s.state.Phase != sess.PhaseInProgress {
		t.Errorf("phase = %v, want InProgress", s.state.Phase)
	}
}

func TestPracticeScreen_EndFlow(t *testing.T) {
	s, _, _ := testScreen()

	s.Update(keyPress('e'))
	if !s.confirmEnd {
		t.Fatal("expected end confirmation dialog")
	}

	_, cmd := s.Update(keyPress('y'))
	if s.state.Phase != sess.PhaseEnding {
		t.Fatalf("phase = %v, want Ending", s.state.Phase)
	}
	if cmd == nil {
		t.Fatal("expected a scoring command")
	}

	seq := s.state.Seq(sess.CatFeedback)
	s.Update(assessedMsg{Seq: seq, Assessment: scoredAssessment()})

	if s.state.Phase != sess.PhaseEnded {
		t.Fatalf("phase = %v, want Ended", s.state.Phase)
	}
	if s.state.Assessment == nil || s.state.Assessment.Scores == nil {
		t.Fatal("expected assessment to be stored")
	}
	if s.state.ReflectionRunning {
		t.Error("reflection must wait for the learner to ask")
	}
}

func TestPracticeScreen_ReflectionOnDemand(t *testing.T) {
	s, _, _ := testScreen()
	endScored(s)

	_, cmd := s.Update(keyPress('r'))
	if !s.state.ReflectionRunning {
		t.Fatal("expected reflection to start on R")
	}
	if cmd == nil {
		t.Error("expected a reflection command")
	}

	// A second press while running must not restart the pipeline.
	seq := s.state.Seq(sess.CatReflection)
	s.Update(keyPress('r'))
	if got := s.state.Seq(sess.CatReflection); got != seq {
		t.Error("repeated R must not issue a new reflection")
	}
}

func TestPracticeScreen_ReflectionThenPlan(t *testing.T) {
	s, _, _ := testScreen()
	endScored(s)
	s.Update(keyPress('r'))

	rseq := s.state.Seq(sess.CatReflection)
	_, cmd := s.Update(reflectedMsg{Seq: rseq, Reflection: agent.Reflection{Summary: "Solid session."}})

	if s.state.Reflection == nil || s.state.Reflection.Summary != "Solid session." {
		t.Fatal("expected reflection to be stored")
	}
	if !s.state.PlanRunning {
		t.Error("expected plan stage to start after reflection")
	}
	if cmd == nil {
		t.Error("expected a plan command")
	}

	pseq := s.state.Seq(sess.CatPlan)
	plan := agent.Plan{Scenario: "Business Meeting", Level: 3, StarterTurns: []string{"Shall we begin?"}}
	s.Update(plannedMsg{Seq: pseq, Plan: &plan})

	if s.state.Plan == nil || s.state.Plan.Scenario != "Business Meeting" {
		t.Error("expected plan to be stored")
	}
}

func TestPracticeScreen_PlanFailureLeavesReflection(t *testing.T) {
	s, _, _ := testScreen()
	endScored(s)
	s.Update(keyPress('r'))

	rseq := s.state.Seq(sess.CatReflection)
	s.Update(reflectedMsg{Seq: rseq, Reflection: agent.Reflection{Summary: "Solid session."}})

	pseq := s.state.Seq(sess.CatPlan)
	s.Update(plannedMsg{Seq: pseq, Err: errors.New("provider down")})

	if s.state.Plan != nil {
		t.Error("failed plan must stay absent")
	}
	if s.state.Reflection == nil {
		t.Error("reflection must survive a failed plan")
	}
}

func TestPracticeScreen_ReflectFailureShowsPlaceholder(t *testing.T) {
	s, _, _ := testScreen()
	endScored(s)
	s.Update(keyPress('r'))

	rseq := s.state.Seq(sess.CatReflection)
	s.Update(reflectedMsg{Seq: rseq, Err: errors.New("provider down")})

	if s.state.Reflection == nil {
		t.Fatal("expected the placeholder reflection to be stored")
	}
	if !s.state.Reflection.IsFallback() {
		t.Errorf("Reflection = %+v, want the failure placeholder", s.state.Reflection)
	}
	if s.state.Reflection.Summary == "" {
		t.Error("placeholder must carry a visible summary")
	}
}

func TestPracticeScreen_NextWaitsForPipeline(t *testing.T) {
	s, _, _ := testScreen()
	endScored(s)
	s.Update(keyPress('r'))

	oldID := s.state.ID
	before := s.state.Conversation.Len()
	s.Update(keyPress('n'))

	if s.state.ID != oldID {
		t.Error("next session must not start while reflection is running")
	}
	if s.state.Conversation.Len() != before {
		t.Error("conversation must stay untouched while reflection is running")
	}
	if s.statusMsg == "" {
		t.Error("expected a status message explaining the wait")
	}
}

func TestPracticeScreen_StartNextUsesPlan(t *testing.T) {
	s, _, _ := testScreen()
	endScored(s)
	s.state.ReflectionDone(agent.Reflection{Summary: "ok"})
	plan := agent.Plan{Scenario: "Business Meeting", Level: 3, StarterTurns: []string{"Shall we begin the standup?"}}
	s.state.PlanDone(&plan)

	oldID := s.state.ID
	s.Update(keyPress('n'))

	if s.state.Phase != sess.PhaseInProgress {
		t.Fatalf("phase = %v, want InProgress", s.state.Phase)
	}
	if s.state.ID == oldID {
		t.Error("expected a new session ID")
	}
	if s.state.ScenarioTitle != "Business Meeting" {
		t.Errorf("scenario = %q, want plan scenario", s.state.ScenarioTitle)
	}
	if s.state.Conversation.Len() != 1 {
		t.Fatalf("conversation length = %d, want 1", s.state.Conversation.Len())
	}
	if got := s.state.Conversation.Last().Content; got != "Shall we begin the standup?" {
		t.Errorf("opening = %q, want plan starter", got)
	}
	if s.state.Assessment != nil || s.state.Reflection != nil || s.state.Plan != nil {
		t.Error("results must be cleared for the next session")
	}
}

func TestPracticeScreen_StartNextWithoutPlanRepeatsScenario(t *testing.T) {
	s, _, _ := testScreen()
	endScored(s)

	s.Update(keyPress('n'))

	if s.state.ScenarioTitle != "Daily Conversation" {
		t.Errorf("scenario = %q, want current scenario repeated", s.state.ScenarioTitle)
	}
	if got := s.state.Conversation.Last().Content; got != scenario.ByID("2").Opening {
		t.Errorf("opening = %q, want stock opening", got)
	}
}

func TestPracticeScreen_StaleReplyAfterStartNextIgnored(t *testing.T) {
	s, _, _ := testScreen()
	s.Update(keyPress(' '))
	s.Update(keyPress(' '))
	tseq := s.state.NextSeq(sess.CatTranscription)
	s.Update(transcriptMsg{Seq: tseq, Text: "hello"})
	seq := s.state.Seq(sess.CatDialogue)

	// End and roll over before the reply lands.
	s.state.DialogueDone()
	endScored(s)
	s.Update(keyPress('n'))
	before := s.state.Conversation.Len()

	s.Update(partnerReplyMsg{Seq: seq, Text: "late reply"})

	if s.state.Conversation.Len() != before {
		t.Error("reply from the previous session must be dropped")
	}
}

func TestPracticeScreen_TeardownReleasesAudio(t *testing.T) {
	s, rec, _ := testScreen()
	s.Update(keyPress(' '))

	s.Teardown()

	if rec.Cancels == 0 {
		t.Error("expected recorder cancel on teardown")
	}
	if err := s.ctx.Err(); err == nil {
		t.Error("expected screen context to be cancelled")
	}
}

// endScored drives the screen through a clean end-of-session scoring.
func endScored(s *PracticeScreen) {
	s.Update(keyPress('e'))
	s.Update(keyPress('y'))
	seq := s.state.Seq(sess.CatFeedback)
	s.Update(assessedMsg{Seq: seq, Assessment: scoredAssessment()})
}
