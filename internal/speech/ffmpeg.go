package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"sync"
	"time"
)

// CaptureConfig describes how the microphone should be captured.
type CaptureConfig struct {
	Command     string // capture binary, default "ffmpeg"
	SampleRate  int    // default 16000, what whisper wants
	InputFormat string // ffmpeg -f value, default per OS
	InputDevice string // ffmpeg -i value, default per OS
}

func (c CaptureConfig) withDefaults() CaptureConfig {
	if c.Command == "" {
		c.Command = "ffmpeg"
	}
	if c.SampleRate <= 0 {
		c.SampleRate = 16000
	}
	if c.InputFormat == "" {
		if runtime.GOOS == "darwin" {
			c.InputFormat = "avfoundation"
		} else {
			c.InputFormat = "pulse"
		}
	}
	if c.InputDevice == "" {
		if runtime.GOOS == "darwin" {
			c.InputDevice = ":0"
		} else {
			c.InputDevice = "default"
		}
	}
	return c
}

// FFmpegRecorder records mono WAV takes by running ffmpeg against the
// default input device.
type FFmpegRecorder struct {
	config CaptureConfig

	mu      sync.Mutex
	cmd     *exec.Cmd
	stderr  *bytes.Buffer
	path    string
	started time.Time
	waitErr chan error
}

func NewFFmpegRecorder(cfg CaptureConfig) *FFmpegRecorder {
	return &FFmpegRecorder{config: cfg.withDefaults()}
}

func (r *FFmpegRecorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd != nil {
		return errors.New("recording already in progress")
	}

	cfg := r.config
	if _, err := exec.LookPath(cfg.Command); err != nil {
		return &CapabilityError{Capability: "capture", Err: err}
	}

	f, err := os.CreateTemp("", "parlo-take-*.wav")
	if err != nil {
		return fmt.Errorf("create capture file: %w", err)
	}
	path := f.Name()
	f.Close()

	args := []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", cfg.InputFormat,
		"-i", cfg.InputDevice,
		"-ac", "1",
		"-ar", strconv.Itoa(cfg.SampleRate),
		"-y", path,
	}

	cmd := exec.CommandContext(ctx, cfg.Command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		os.Remove(path)
		return &CapabilityError{Capability: "capture", Err: err}
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
	}()

	// ffmpeg that cannot open the device exits almost immediately; give
	// it a moment so Start can report that instead of a broken Stop.
	select {
	case err := <-waitErr:
		os.Remove(path)
		if err == nil {
			err = errors.New("capture process exited before recording started")
		}
		return &CapabilityError{
			Capability: "capture",
			Err:        fmt.Errorf("%w: %s", err, trimmed(stderr.String())),
		}
	case <-time.After(250 * time.Millisecond):
	}

	r.cmd = cmd
	r.stderr = &stderr
	r.path = path
	r.started = time.Now()
	r.waitErr = waitErr
	return nil
}

func (r *FFmpegRecorder) Stop() (Clip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd == nil {
		return Clip{}, errors.New("no recording in progress")
	}

	clip := Clip{Path: r.path, Duration: time.Since(r.started)}
	err := r.shutdownLocked()
	if err != nil {
		os.Remove(clip.Path)
		return Clip{}, err
	}
	return clip, nil
}

func (r *FFmpegRecorder) Cancel() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd == nil {
		return nil
	}
	path := r.path
	err := r.shutdownLocked()
	os.Remove(path)
	return err
}

// shutdownLocked interrupts ffmpeg so it finalizes the WAV header, then
// waits for exit. Callers hold r.mu.
func (r *FFmpegRecorder) shutdownLocked() error {
	cmd, stderr, waitErr := r.cmd, r.stderr, r.waitErr
	r.cmd, r.stderr, r.path, r.waitErr = nil, nil, "", nil

	_ = cmd.Process.Signal(os.Interrupt)

	var err error
	select {
	case werr, ok := <-waitErr:
		if ok {
			err = normalizeExit(werr)
		}
	case <-time.After(1200 * time.Millisecond):
		_ = cmd.Process.Kill()
		werr, ok := <-waitErr
		if ok {
			err = normalizeExit(werr)
		}
	}

	if err != nil && stderr.Len() > 0 {
		err = fmt.Errorf("%w: %s", err, trimmed(stderr.String()))
	}
	return err
}

// normalizeExit drops the nonzero status ffmpeg reports when it is
// interrupted mid-capture.
func normalizeExit(err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

func trimmed(s string) string {
	return string(bytes.TrimSpace([]byte(s)))
}

// RemoveClip deletes a finished take, ignoring already-gone files.
func RemoveClip(c Clip) {
	if c.Path == "" {
		return
	}
	_ = os.Remove(c.Path)
}
