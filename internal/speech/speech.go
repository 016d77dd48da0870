// Package speech provides microphone capture and spoken output.
//
// Both sides are optional capabilities: a machine without ffmpeg or a
// TTS binary still runs the app in text mode, and callers distinguish
// that case through CapabilityError.
package speech

import (
	"context"
	"fmt"
	"time"
)

// CapabilityError reports that the host lacks a required audio tool or
// device. The practice loop degrades to typed input when it sees one.
type CapabilityError struct {
	Capability string // "capture" or "speak"
	Err        error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("audio capability %q unavailable: %v", e.Capability, e.Err)
}

func (e *CapabilityError) Unwrap() error { return e.Err }

// Clip is one finished recording on disk.
type Clip struct {
	// Path to a WAV file. The caller owns the file and removes it after
	// transcription.
	Path string

	Duration time.Duration
}

// Recorder captures microphone audio, one take at a time.
type Recorder interface {
	// Start begins capturing. Returns *CapabilityError when the host
	// cannot record. Calling Start while a take is in flight is an error.
	Start(ctx context.Context) error

	// Stop ends the current take and returns the recorded clip.
	Stop() (Clip, error)

	// Cancel discards the current take, if any.
	Cancel() error
}

// Speaker voices assistant lines out loud.
type Speaker interface {
	// Speak pronounces text, returning once playback finishes or ctx is
	// done. Returns *CapabilityError when no TTS backend exists.
	Speak(ctx context.Context, text string) error

	// Stop interrupts playback in progress.
	Stop() error
}
