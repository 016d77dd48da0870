package speech

import (
	"context"
	"errors"
	"sync"
	"time"
)

// FakeRecorder is an in-memory Recorder for tests and text-only mode.
type FakeRecorder struct {
	// StartErr, when set, is returned from Start.
	StartErr error

	// NextClip is what Stop returns.
	NextClip Clip

	mu      sync.Mutex
	active  bool
	Starts  int
	Stops   int
	Cancels int
}

func (f *FakeRecorder) Start(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.StartErr != nil {
		return f.StartErr
	}
	if f.active {
		return errors.New("recording already in progress")
	}
	f.active = true
	f.Starts++
	return nil
}

func (f *FakeRecorder) Stop() (Clip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.active {
		return Clip{}, errors.New("no recording in progress")
	}
	f.active = false
	f.Stops++
	clip := f.NextClip
	if clip.Duration == 0 {
		clip.Duration = time.Second
	}
	return clip, nil
}

func (f *FakeRecorder) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active {
		f.active = false
		f.Cancels++
	}
	return nil
}

// FakeSpeaker records spoken lines without making a sound.
type FakeSpeaker struct {
	// SpeakErr, when set, is returned from Speak.
	SpeakErr error

	mu     sync.Mutex
	Spoken []string
	Stops  int
}

func (f *FakeSpeaker) Speak(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SpeakErr != nil {
		return f.SpeakErr
	}
	f.Spoken = append(f.Spoken, text)
	return nil
}

func (f *FakeSpeaker) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Stops++
	return nil
}
