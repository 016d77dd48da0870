package speech

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"sync"
)

// ExecSpeaker voices text through a local TTS binary: `say` on macOS,
// `espeak` elsewhere.
type ExecSpeaker struct {
	command string
	args    []string

	mu  sync.Mutex
	cmd *exec.Cmd
}

// NewExecSpeaker picks the platform TTS command. command overrides
// autodetection when non-empty.
func NewExecSpeaker(command string) *ExecSpeaker {
	if command != "" {
		return &ExecSpeaker{command: command}
	}
	if runtime.GOOS == "darwin" {
		return &ExecSpeaker{command: "say"}
	}
	return &ExecSpeaker{command: "espeak", args: []string{"-s", "150"}}
}

func (s *ExecSpeaker) Speak(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	if _, err := exec.LookPath(s.command); err != nil {
		return &CapabilityError{Capability: "speak", Err: err}
	}

	cmd := exec.CommandContext(ctx, s.command, append(s.args, text)...)

	s.mu.Lock()
	// A new utterance cuts off the one still playing.
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	if err := cmd.Start(); err != nil {
		s.mu.Unlock()
		return &CapabilityError{Capability: "speak", Err: err}
	}
	s.cmd = cmd
	s.mu.Unlock()

	err := cmd.Wait()

	s.mu.Lock()
	if s.cmd == cmd {
		s.cmd = nil
	}
	s.mu.Unlock()

	// A kill from Stop or ctx cancellation is a normal interruption.
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) || errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return err
}

func (s *ExecSpeaker) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd == nil || s.cmd.Process == nil {
		return nil
	}
	return s.cmd.Process.Kill()
}
