// Package session holds the practice-session state machine: conversation,
// recording sub-cycle, session phase, and the request sequence counters
// that make stale async results detectable.
package session

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/arundaya/parlo/internal/agent"
	"github.com/arundaya/parlo/internal/assess"
	"github.com/arundaya/parlo/internal/convo"
)

// RecordingState is the audio-turn sub-cycle. Exactly one audio turn may
// be in Capturing/Transcribing at a time.
type RecordingState int

const (
	RecordingIdle RecordingState = iota
	RecordingCapturing
	RecordingTranscribing
)

func (r RecordingState) String() string {
	switch r {
	case RecordingCapturing:
		return "capturing"
	case RecordingTranscribing:
		return "transcribing"
	default:
		return "idle"
	}
}

// Phase is the session lifecycle. It moves forward only, except for the
// explicit reset performed by StartNext.
type Phase int

const (
	PhaseInProgress Phase = iota
	PhaseEnding
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseEnding:
		return "ending"
	case PhaseEnded:
		return "ended"
	default:
		return "in_progress"
	}
}

// Category identifies one kind of async request for staleness tracking.
type Category int

const (
	CatCapture Category = iota
	CatTranscription
	CatDialogue
	CatFeedback
	CatReflection
	CatPlan
	categoryCount
)

// Transition guard errors. Callers treat most of them as no-ops; they
// exist so illegal transitions are visible in tests and logs.
var (
	ErrNotIdle         = errors.New("recording is not idle")
	ErrNotCapturing    = errors.New("recording is not capturing")
	ErrNotTranscribing = errors.New("recording is not transcribing")
	ErrNotInProgress   = errors.New("session is not in progress")
	ErrTurnInFlight    = errors.New("an audio or dialogue turn is in flight")
	ErrDialoguePending = errors.New("a dialogue reply is already pending")
	ErrNotEnded        = errors.New("session has not ended")
	ErrAlreadyRunning  = errors.New("already running")
)

// State is the per-screen-instance session state. The practice screen is
// its single writer; everything async goes through sequence checks.
type State struct {
	ID            string
	ScenarioID    string
	ScenarioTitle string

	Conversation *convo.Conversation
	Recording    RecordingState
	Phase        Phase
	StartedAt    time.Time

	// DialoguePending is set between sending user text and receiving
	// (or failing to receive) the assistant reply.
	DialoguePending bool

	// Results, replaced wholesale by their producing stage.
	Assessment *assess.Assessment
	Reflection *agent.Reflection
	Plan       *agent.Plan

	ReflectionRunning bool
	PlanRunning       bool

	// TaskItemID is the assigned plan item backing this session, 0 when
	// the session was not started from the task queue.
	TaskItemID int64

	seq [categoryCount]uint64
}

// New starts a fresh session seeded with the scenario's opening line.
func New(scenarioID, scenarioTitle, opening string) *State {
	return &State{
		ID:            uuid.NewString(),
		ScenarioID:    scenarioID,
		ScenarioTitle: scenarioTitle,
		Conversation:  convo.NewConversation(opening),
		Recording:     RecordingIdle,
		Phase:         PhaseInProgress,
		StartedAt:     time.Now(),
	}
}

// NextSeq issues a new sequence number for a request category. The
// returned value is captured by the async command; only a response
// carrying the latest number may be applied.
func (s *State) NextSeq(cat Category) uint64 {
	s.seq[cat]++
	return s.seq[cat]
}

// Fresh reports whether seq is still the most recent request of its
// category. Stale results must be dropped without touching state.
func (s *State) Fresh(cat Category, seq uint64) bool {
	return s.seq[cat] == seq
}

// Seq returns the current sequence number of a category.
func (s *State) Seq(cat Category) uint64 {
	return s.seq[cat]
}

// BeginCapture moves Idle → Capturing. Any other starting state is
// rejected so a second capture can never open.
func (s *State) BeginCapture() error {
	if s.Phase != PhaseInProgress {
		return ErrNotInProgress
	}
	if s.DialoguePending {
		return ErrDialoguePending
	}
	if s.Recording != RecordingIdle {
		return ErrNotIdle
	}
	s.Recording = RecordingCapturing
	return nil
}

// EndCapture moves Capturing → Transcribing.
func (s *State) EndCapture() error {
	if s.Recording != RecordingCapturing {
		return ErrNotCapturing
	}
	s.Recording = RecordingTranscribing
	return nil
}

// CaptureAborted returns a failed capture to Idle.
func (s *State) CaptureAborted() {
	if s.Recording == RecordingCapturing {
		s.Recording = RecordingIdle
	}
}

// TranscriptionDone returns Transcribing → Idle, on success or failure.
func (s *State) TranscriptionDone() error {
	if s.Recording != RecordingTranscribing {
		return ErrNotTranscribing
	}
	s.Recording = RecordingIdle
	return nil
}

// BeginDialogue marks an assistant reply as pending.
func (s *State) BeginDialogue() error {
	if s.Phase != PhaseInProgress {
		return ErrNotInProgress
	}
	if s.DialoguePending {
		return ErrDialoguePending
	}
	s.DialoguePending = true
	return nil
}

// DialogueDone clears the pending reply, on success or failure.
func (s *State) DialogueDone() {
	s.DialoguePending = false
}

// CanEnd reports whether the end-session action is currently legal.
func (s *State) CanEnd() bool {
	return s.Phase == PhaseInProgress &&
		s.Recording == RecordingIdle &&
		!s.DialoguePending
}

// BeginEnding moves InProgress → Ending. Rejected while an audio or
// dialogue turn is in flight, and on re-entry once Ending/Ended.
func (s *State) BeginEnding() error {
	if s.Phase != PhaseInProgress {
		return ErrNotInProgress
	}
	if s.Recording != RecordingIdle || s.DialoguePending {
		return ErrTurnInFlight
	}
	s.Phase = PhaseEnding
	return nil
}

// MarkEnded completes the end-of-session flow. Every path out of Ending
// lands here, success or failure.
func (s *State) MarkEnded() {
	s.Phase = PhaseEnded
}

// BeginReflection gates the reflect-and-plan pipeline: only once the
// session has ended, and only one run at a time.
func (s *State) BeginReflection() error {
	if s.Phase != PhaseEnded {
		return ErrNotEnded
	}
	if s.ReflectionRunning || s.PlanRunning {
		return ErrAlreadyRunning
	}
	s.ReflectionRunning = true
	return nil
}

// ReflectionDone stores the reflection and hands off to the plan stage.
func (s *State) ReflectionDone(r agent.Reflection) {
	s.Reflection = &r
	s.ReflectionRunning = false
}

// BeginPlan starts the plan stage; it follows reflection sequentially.
func (s *State) BeginPlan() error {
	if s.Phase != PhaseEnded || s.Reflection == nil {
		return ErrNotEnded
	}
	if s.PlanRunning {
		return ErrAlreadyRunning
	}
	s.PlanRunning = true
	return nil
}

// PlanDone stores the plan; nil means the plan stage failed and the
// section stays absent.
func (s *State) PlanDone(p *agent.Plan) {
	s.Plan = p
	s.PlanRunning = false
}

// DurationMin returns elapsed session time in minutes, floored at zero
// and rounded to two decimals.
func (s *State) DurationMin(now time.Time) float64 {
	min := now.Sub(s.StartedAt).Minutes()
	if min < 0 {
		min = 0
	}
	return math.Round(min*100) / 100
}

// StartNext resets this instance for a new session: a single seed turn,
// recording Idle, phase InProgress, cleared results, fresh clock. It is
// the only way phase moves backward. All sequence counters advance so
// any straggler response from the previous session is stale by
// construction.
func (s *State) StartNext(scenarioID, scenarioTitle, opening string) {
	s.ID = uuid.NewString()
	s.ScenarioID = scenarioID
	s.ScenarioTitle = scenarioTitle
	s.Conversation.Reset(opening)
	s.Recording = RecordingIdle
	s.Phase = PhaseInProgress
	s.StartedAt = time.Now()
	s.DialoguePending = false
	s.Assessment = nil
	s.Reflection = nil
	s.Plan = nil
	s.ReflectionRunning = false
	s.PlanRunning = false
	s.TaskItemID = 0
	for cat := Category(0); cat < categoryCount; cat++ {
		s.seq[cat]++
	}
}
