package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arundaya/parlo/internal/agent"
	"github.com/arundaya/parlo/internal/app"
	"github.com/arundaya/parlo/internal/assess"
	"github.com/arundaya/parlo/internal/dialogue"
	"github.com/arundaya/parlo/internal/llm"
	"github.com/arundaya/parlo/internal/logging"
	"github.com/arundaya/parlo/internal/screens/practice"
	"github.com/arundaya/parlo/internal/speech"
	"github.com/arundaya/parlo/internal/store"
	"github.com/arundaya/parlo/internal/stt"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	rt, err := logging.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Log file unavailable:", err)
		rt = logging.Discard()
	}
	defer rt.Close()
	log := rt.Logger

	deps := practice.Deps{
		Recorder: speech.NewFFmpegRecorder(speech.CaptureConfig{}),
		Sessions: st.SessionRepo(),
		Profiles: st.ProfileRepo(),
		Log:      log,
	}
	if os.Getenv("PARLO_NO_TTS") == "" {
		deps.Speaker = speech.NewExecSpeaker(os.Getenv("PARLO_TTS_COMMAND"))
	}

	cfg, ok := llm.DiscoverConfig()
	if !ok {
		fmt.Fprintln(os.Stderr, "LLM provider not configured: set PARLO_GROQ_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY, or GEMINI_API_KEY.")
		fmt.Fprintln(os.Stderr, "Conversation and feedback features will be unavailable.")
		// An empty mock fails every call, so screens fall back to their
		// offline behavior instead of crashing.
		cfg = llm.Config{Provider: "mock"}
	}
	provider, err := llm.NewProvider(cfg, st.EventRepo())
	if err != nil {
		return fmt.Errorf("configure LLM provider: %w", err)
	}

	deps.Dialogue = dialogue.NewService(provider)
	deps.Scorer = assess.NewService(provider)
	deps.Reflector = agent.NewReflector(provider)
	deps.Planner = agent.NewPlanner(provider)
	deps.Tasks = agent.NewTaskSource(st.ProfileRepo(), st.PlanRepo())

	if tr, err := stt.NewWhisperTranscriber(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "Transcription unavailable:", err)
	} else {
		deps.Transcriber = tr
	}

	return app.Run(app.Options{
		Practice: deps,
		Profiles: st.ProfileRepo(),
		Log:      log,
	})
}
