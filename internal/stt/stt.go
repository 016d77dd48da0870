// Package stt turns recorded clips into text using a whisper-compatible
// transcription API.
package stt

import (
	"context"
	"fmt"
)

// Transcriber converts one audio file into text.
type Transcriber interface {
	// Transcribe uploads the clip at path and returns its transcript.
	// An empty transcript with a nil error means the clip held no speech.
	Transcribe(ctx context.Context, path string) (string, error)
}

// TranscribeError wraps provider failures so the practice loop can show
// a retryable "transcription failed" state instead of dying.
type TranscribeError struct {
	Err error
}

func (e *TranscribeError) Error() string {
	return fmt.Sprintf("transcription failed: %v", e.Err)
}

func (e *TranscribeError) Unwrap() error { return e.Err }
