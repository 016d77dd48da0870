package stt

import (
	"context"
	"sync"
)

// FakeTranscriber returns canned transcripts in FIFO order.
type FakeTranscriber struct {
	// Transcripts are popped one per call; once empty, calls return "".
	Transcripts []string

	// Err, when set, is returned from every call.
	Err error

	mu    sync.Mutex
	Paths []string
}

func (f *FakeTranscriber) Transcribe(_ context.Context, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Paths = append(f.Paths, path)
	if f.Err != nil {
		return "", f.Err
	}
	if len(f.Transcripts) == 0 {
		return "", nil
	}
	text := f.Transcripts[0]
	f.Transcripts = f.Transcripts[1:]
	return text, nil
}
