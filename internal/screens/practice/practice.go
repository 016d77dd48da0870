package practice

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/arundaya/parlo/internal/agent"
	"github.com/arundaya/parlo/internal/assess"
	"github.com/arundaya/parlo/internal/coach"
	"github.com/arundaya/parlo/internal/convo"
	"github.com/arundaya/parlo/internal/dialogue"
	"github.com/arundaya/parlo/internal/scenario"
	"github.com/arundaya/parlo/internal/screen"
	sess "github.com/arundaya/parlo/internal/session"
	"github.com/arundaya/parlo/internal/speech"
	"github.com/arundaya/parlo/internal/store"
	"github.com/arundaya/parlo/internal/stt"
	"github.com/arundaya/parlo/internal/ui/layout"
)

// fallbackReply is spoken by the partner when the dialogue service fails.
// It carries no coaching tip.
const fallbackReply = "Sorry, I had trouble responding. Let's keep going, tell me more."

// transcriptFailedReply lands in the conversation when a take could not
// be transcribed, so the failure is visible where the turn would be.
const transcriptFailedReply = "Sorry, transcription failed. Please try again."

// scorer, reflector and planner are the slices of the assess and agent
// services the screen calls, narrowed so tests can stub them.
type scorer interface {
	Score(ctx context.Context, conv *convo.Conversation, durationMin float64) (assess.Assessment, error)
}

type reflector interface {
	Reflect(ctx context.Context, conv *convo.Conversation, assessment *assess.Assessment) (agent.Reflection, error)
}

type planner interface {
	Plan(ctx context.Context, profile store.Profile, refl agent.Reflection) (agent.Plan, error)
}

// Deps bundles everything the practice screen needs injected.
type Deps struct {
	Recorder    speech.Recorder
	Speaker     speech.Speaker
	Transcriber stt.Transcriber
	Dialogue    *dialogue.Service
	Scorer      scorer
	Reflector   reflector
	Planner     planner
	Tasks       *agent.TaskSource
	Sessions    store.SessionRepo
	Profiles    store.ProfileRepo
	Log         *slog.Logger
}

// PracticeScreen drives one speaking session: record, transcribe, reply,
// and on ending score the session and run the reflection pipeline.
type PracticeScreen struct {
	deps  Deps
	state *sess.State

	ctx    context.Context
	cancel context.CancelFunc

	spin spinner.Model

	// tips annotates assistant turns (by conversation index) with the
	// local coaching tip for the learner line that preceded them.
	tips map[int]string

	pendingTip string
	speakAloud bool
	confirmEnd bool
	statusMsg  string
	save       *store.SaveResult
}

var _ screen.Screen = (*PracticeScreen)(nil)
var _ screen.KeyHintProvider = (*PracticeScreen)(nil)
var _ screen.Teardowner = (*PracticeScreen)(nil)

// New creates a practice screen for the given scenario.
func New(deps Deps, sc scenario.Scenario) *PracticeScreen {
	return newScreen(deps, sess.New(sc.ID, sc.Title, sc.Opening))
}

// NewFromTask creates a practice screen for an assigned plan item. The
// task's prompt, when present, overrides the scenario's opening line.
func NewFromTask(deps Deps, task agent.Task) *PracticeScreen {
	sc := scenario.ByTitle(task.Scenario)
	opening := sc.Opening
	if task.Prompt != "" {
		opening = task.Prompt
	}
	st := sess.New(sc.ID, sc.Title, opening)
	st.TaskItemID = task.ItemID
	return newScreen(deps, st)
}

func newScreen(deps Deps, st *sess.State) *PracticeScreen {
	ctx, cancel := context.WithCancel(context.Background())
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	if deps.Log == nil {
		deps.Log = slog.New(slog.DiscardHandler)
	}
	return &PracticeScreen{
		deps:       deps,
		state:      st,
		ctx:        ctx,
		cancel:     cancel,
		spin:       sp,
		tips:       make(map[int]string),
		speakAloud: deps.Speaker != nil,
	}
}

func (s *PracticeScreen) Init() tea.Cmd {
	return s.spin.Tick
}

func (s *PracticeScreen) Title() string {
	return "Practice"
}

// Teardown cancels in-flight work and releases the audio devices.
func (s *PracticeScreen) Teardown() {
	s.cancel()
	if s.deps.Recorder != nil {
		_ = s.deps.Recorder.Cancel()
	}
	if s.deps.Speaker != nil {
		_ = s.deps.Speaker.Stop()
	}
}

func (s *PracticeScreen) KeyHints() []layout.KeyHint {
	if s.confirmEnd {
		return []layout.KeyHint{
			{Key: "Y", Description: "End session"},
			{Key: "N", Description: "Keep going"},
		}
	}
	switch s.state.Phase {
	case sess.PhaseEnded:
		hints := []layout.KeyHint{
			{Key: "N", Description: "Next session"},
			{Key: "Esc", Description: "Back"},
		}
		if s.deps.Reflector != nil && s.state.Reflection == nil && !s.state.ReflectionRunning {
			hints = append([]layout.KeyHint{{Key: "R", Description: "Reflect & plan"}}, hints...)
		}
		return hints
	case sess.PhaseEnding:
		return nil
	}
	rec := "Record"
	if s.state.Recording == sess.RecordingCapturing {
		rec = "Stop recording"
	}
	return []layout.KeyHint{
		{Key: "Space", Description: rec},
		{Key: "E", Description: "End session"},
		{Key: "S", Description: "Toggle voice"},
	}
}

func (s *PracticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case transcriptMsg:
		return s.handleTranscript(msg)
	case partnerReplyMsg:
		return s.handlePartnerReply(msg)
	case assessedMsg:
		return s.handleAssessed(msg)
	case reflectedMsg:
		return s.handleReflected(msg)
	case plannedMsg:
		return s.handlePlanned(msg)
	case spokenMsg:
		if msg.Err != nil {
			s.deps.Log.Warn("speak failed", "error", msg.Err)
		}
		return s, nil
	case spinner.TickMsg:
		if !s.busy() {
			return s, nil
		}
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(msg)
		return s, cmd
	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

// busy reports whether async work is in flight, which keeps the spinner
// animating.
func (s *PracticeScreen) busy() bool {
	return s.state.Recording == sess.RecordingTranscribing ||
		s.state.DialoguePending ||
		s.state.Phase == sess.PhaseEnding ||
		s.state.ReflectionRunning ||
		s.state.PlanRunning
}

func (s *PracticeScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.confirmEnd {
		switch key {
		case "y", "Y":
			s.confirmEnd = false
			return s.endSession()
		case "n", "N", "esc":
			s.confirmEnd = false
		}
		return s, nil
	}

	switch s.state.Phase {
	case sess.PhaseInProgress:
		switch key {
		case " ", "space", "r":
			return s.toggleRecording()
		case "e":
			if !s.state.CanEnd() {
				s.statusMsg = "Finish the current turn before ending."
				return s, nil
			}
			s.confirmEnd = true
			return s, nil
		case "s":
			s.speakAloud = !s.speakAloud
			if !s.speakAloud && s.deps.Speaker != nil {
				_ = s.deps.Speaker.Stop()
			}
			return s, nil
		}
	case sess.PhaseEnded:
		switch key {
		case "n", "N":
			return s.startNext()
		case "r", "R":
			return s.startReflection()
		}
	}
	return s, nil
}

// toggleRecording starts a take when idle and stops it when capturing.
func (s *PracticeScreen) toggleRecording() (screen.Screen, tea.Cmd) {
	switch s.state.Recording {
	case sess.RecordingIdle:
		if s.deps.Transcriber == nil {
			s.statusMsg = "Transcription is not configured."
			return s, nil
		}
		if err := s.state.BeginCapture(); err != nil {
			if errors.Is(err, sess.ErrDialoguePending) {
				s.statusMsg = "Wait for your partner to reply."
			}
			return s, nil
		}
		if err := s.deps.Recorder.Start(s.ctx); err != nil {
			s.state.CaptureAborted()
			var capErr *speech.CapabilityError
			if errors.As(err, &capErr) {
				s.statusMsg = "Recording unavailable: " + capErr.Error()
			} else {
				s.statusMsg = "Could not start recording."
			}
			s.deps.Log.Error("capture start failed", "error", err)
			return s, nil
		}
		s.statusMsg = ""
		return s, nil

	case sess.RecordingCapturing:
		if err := s.state.EndCapture(); err != nil {
			return s, nil
		}
		return s, tea.Batch(s.transcribeCmd(), s.spin.Tick)
	}
	return s, nil
}

// transcribeCmd finalizes the take and transcribes it off the update loop.
func (s *PracticeScreen) transcribeCmd() tea.Cmd {
	seq := s.state.NextSeq(sess.CatTranscription)
	ctx := s.ctx
	rec := s.deps.Recorder
	tr := s.deps.Transcriber
	return func() tea.Msg {
		clip, err := rec.Stop()
		if err != nil {
			return transcriptMsg{Seq: seq, Err: err}
		}
		defer speech.RemoveClip(clip)
		text, err := tr.Transcribe(ctx, clip.Path)
		if err != nil {
			return transcriptMsg{Seq: seq, Err: err}
		}
		return transcriptMsg{Seq: seq, Text: text}
	}
}

func (s *PracticeScreen) handleTranscript(msg transcriptMsg) (screen.Screen, tea.Cmd) {
	if !s.state.Fresh(sess.CatTranscription, msg.Seq) {
		return s, nil
	}
	if err := s.state.TranscriptionDone(); err != nil {
		return s, nil
	}
	if msg.Err != nil {
		s.state.Conversation.Append(convo.RoleAssistant, transcriptFailedReply)
		s.statusMsg = "Transcription failed. Try again."
		s.deps.Log.Error("transcription failed", "error", msg.Err)
		return s, nil
	}
	if msg.Text == "" {
		s.statusMsg = "Nothing heard. Try again."
		return s, nil
	}

	s.statusMsg = ""
	s.state.Conversation.Append(convo.RoleUser, msg.Text)
	tip := coach.Tip(msg.Text)

	if err := s.state.BeginDialogue(); err != nil {
		return s, nil
	}
	return s, tea.Batch(s.replyCmd(tip), s.spin.Tick)
}

// replyCmd asks the dialogue service for the partner's next line. The
// coaching tip rides along so it lands on the reply it belongs to.
func (s *PracticeScreen) replyCmd(tip string) tea.Cmd {
	seq := s.state.NextSeq(sess.CatDialogue)
	ctx := s.ctx
	svc := s.deps.Dialogue
	title := s.state.ScenarioTitle
	conv := s.state.Conversation
	s.pendingTip = tip
	return func() tea.Msg {
		text, err := svc.NextLine(ctx, title, conv)
		return partnerReplyMsg{Seq: seq, Text: text, Err: err}
	}
}

func (s *PracticeScreen) handlePartnerReply(msg partnerReplyMsg) (screen.Screen, tea.Cmd) {
	if !s.state.Fresh(sess.CatDialogue, msg.Seq) {
		return s, nil
	}
	s.state.DialogueDone()

	if msg.Err != nil {
		s.state.Conversation.Append(convo.RoleAssistant, fallbackReply)
		s.statusMsg = "Speaking partner unavailable."
		s.deps.Log.Error("dialogue failed", "error", msg.Err)
		return s, nil
	}

	s.state.Conversation.Append(convo.RoleAssistant, msg.Text)
	s.tips[s.state.Conversation.Len()-1] = s.pendingTip
	s.pendingTip = ""

	if s.speakAloud && s.deps.Speaker != nil {
		return s, s.speakCmd(msg.Text)
	}
	return s, nil
}

func (s *PracticeScreen) speakCmd(text string) tea.Cmd {
	ctx := s.ctx
	sp := s.deps.Speaker
	return func() tea.Msg {
		return spokenMsg{Err: sp.Speak(ctx, text)}
	}
}

// endSession stops audio, scores the conversation and persists the
// session, all off the update loop.
func (s *PracticeScreen) endSession() (screen.Screen, tea.Cmd) {
	if err := s.state.BeginEnding(); err != nil {
		s.statusMsg = "Finish the current turn before ending."
		return s, nil
	}
	_ = s.deps.Recorder.Cancel()
	if s.deps.Speaker != nil {
		_ = s.deps.Speaker.Stop()
	}

	seq := s.state.NextSeq(sess.CatFeedback)
	ctx := s.ctx
	conv := s.state.Conversation
	dur := s.state.DurationMin(time.Now())
	title := s.state.ScenarioTitle
	taskID := s.state.TaskItemID
	sc := s.deps.Scorer
	sessions := s.deps.Sessions
	tasks := s.deps.Tasks
	log := s.deps.Log

	return s, tea.Batch(func() tea.Msg {
		a, err := sc.Score(ctx, conv, dur)

		var save *store.SaveResult
		if a.Scores != nil && sessions != nil {
			rec := store.SessionRecord{
				Scenario:    title,
				Overall:     a.Scores.Overall,
				Pron:        a.Scores.Pronunciation,
				Grammar:     a.Scores.Grammar,
				Fluency:     a.Scores.Fluency,
				Vocabulary:  a.Scores.Vocabulary,
				Comment:     a.Comment,
				DurationMin: dur,
			}
			if res, serr := sessions.SaveSession(ctx, rec); serr != nil {
				log.Error("save session failed", "error", serr)
			} else {
				save = &res
			}
		}
		if taskID != 0 && tasks != nil {
			if cerr := tasks.Complete(ctx, taskID); cerr != nil {
				log.Warn("complete plan item failed", "error", cerr)
			}
		}
		return assessedMsg{Seq: seq, Assessment: a, Save: save, Err: err}
	}, s.spin.Tick)
}

func (s *PracticeScreen) handleAssessed(msg assessedMsg) (screen.Screen, tea.Cmd) {
	if !s.state.Fresh(sess.CatFeedback, msg.Seq) {
		return s, nil
	}
	a := msg.Assessment
	s.state.Assessment = &a
	s.save = msg.Save
	s.state.MarkEnded()

	if msg.Err != nil {
		s.statusMsg = "Feedback was limited this time."
		s.deps.Log.Warn("scoring degraded", "error", msg.Err)
	}
	return s, nil
}

// startReflection runs the reflect-and-plan pipeline on demand from the
// results view. Each session pays for it only when the learner asks.
func (s *PracticeScreen) startReflection() (screen.Screen, tea.Cmd) {
	if s.deps.Reflector == nil || s.state.Reflection != nil {
		return s, nil
	}
	if err := s.state.BeginReflection(); err != nil {
		return s, nil
	}
	return s, tea.Batch(s.reflectCmd(), s.spin.Tick)
}

func (s *PracticeScreen) reflectCmd() tea.Cmd {
	seq := s.state.NextSeq(sess.CatReflection)
	ctx := s.ctx
	r := s.deps.Reflector
	conv := s.state.Conversation
	assessment := s.state.Assessment
	return func() tea.Msg {
		refl, err := r.Reflect(ctx, conv, assessment)
		return reflectedMsg{Seq: seq, Reflection: refl, Err: err}
	}
}

func (s *PracticeScreen) handleReflected(msg reflectedMsg) (screen.Screen, tea.Cmd) {
	if !s.state.Fresh(sess.CatReflection, msg.Seq) {
		return s, nil
	}
	refl := msg.Reflection
	if msg.Err != nil {
		refl = agent.FallbackReflection()
		s.deps.Log.Warn("reflection degraded", "error", msg.Err)
	}
	s.state.ReflectionDone(refl)

	if s.deps.Planner == nil {
		return s, nil
	}
	if err := s.state.BeginPlan(); err != nil {
		return s, nil
	}
	return s, tea.Batch(s.planCmd(), s.spin.Tick)
}

// planCmd persists the reflection's objectives, then asks the planner for
// the next session and enqueues it on the study plan.
func (s *PracticeScreen) planCmd() tea.Cmd {
	seq := s.state.NextSeq(sess.CatPlan)
	ctx := s.ctx
	refl := *s.state.Reflection
	profiles := s.deps.Profiles
	pl := s.deps.Planner
	tasks := s.deps.Tasks
	log := s.deps.Log
	return func() tea.Msg {
		if profiles == nil {
			return plannedMsg{Seq: seq, Err: errors.New("no profile store")}
		}
		if !refl.IsFallback() && len(refl.ObjectivesNext) > 0 {
			if raw, err := json.Marshal(refl.ObjectivesNext); err == nil {
				if serr := profiles.SetObjectives(ctx, string(raw)); serr != nil {
					log.Warn("persist objectives failed", "error", serr)
				}
			}
		}
		prof, err := profiles.Get(ctx)
		if err != nil {
			return plannedMsg{Seq: seq, Err: err}
		}
		p, err := pl.Plan(ctx, prof, refl)
		if err != nil {
			return plannedMsg{Seq: seq, Err: err}
		}
		if tasks != nil {
			if eerr := tasks.EnqueuePlan(ctx, p); eerr != nil {
				log.Warn("enqueue plan failed", "error", eerr)
			}
		}
		return plannedMsg{Seq: seq, Plan: &p}
	}
}

func (s *PracticeScreen) handlePlanned(msg plannedMsg) (screen.Screen, tea.Cmd) {
	if !s.state.Fresh(sess.CatPlan, msg.Seq) {
		return s, nil
	}
	s.state.PlanDone(msg.Plan)
	if msg.Err != nil {
		s.deps.Log.Warn("planning failed", "error", msg.Err)
	}
	return s, nil
}

// startNext rolls the screen into the next session. A generated plan
// picks the scenario and opening line; without one the current scenario
// repeats with its stock opening.
func (s *PracticeScreen) startNext() (screen.Screen, tea.Cmd) {
	if s.state.Phase != sess.PhaseEnded {
		return s, nil
	}
	// The reflect and plan goroutines read the conversation; it must not
	// be reset under them.
	if s.state.ReflectionRunning || s.state.PlanRunning {
		s.statusMsg = "Wait for your plan to finish."
		return s, nil
	}

	scID := s.state.ScenarioID
	scTitle := s.state.ScenarioTitle
	opening := scenario.ByID(scID).Opening

	if p := s.state.Plan; p != nil {
		next := scenario.ByTitle(p.Scenario)
		scID, scTitle, opening = next.ID, next.Title, next.Opening
		if o := p.Opening(); o != "" {
			opening = o
		}
	}

	s.state.StartNext(scID, scTitle, opening)
	s.tips = make(map[int]string)
	s.pendingTip = ""
	s.confirmEnd = false
	s.statusMsg = ""
	s.save = nil
	return s, nil
}
