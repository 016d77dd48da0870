package stt

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/arundaya/parlo/internal/llm"
)

// WhisperTranscriber calls the OpenAI-compatible audio transcriptions
// endpoint. Groq serves whisper-large-v3 on the same API shape.
type WhisperTranscriber struct {
	client *openai.Client
	model  string
}

// NewWhisperTranscriber builds a transcriber from the LLM config,
// preferring Groq's whisper when a Groq key exists.
func NewWhisperTranscriber(cfg llm.Config) (*WhisperTranscriber, error) {
	switch {
	case cfg.Groq.APIKey != "":
		c := openai.DefaultConfig(cfg.Groq.APIKey)
		c.BaseURL = llm.GroqBaseURL
		return &WhisperTranscriber{
			client: openai.NewClientWithConfig(c),
			model:  cfg.Groq.WhisperModel,
		}, nil
	case cfg.OpenAI.APIKey != "":
		c := openai.DefaultConfig(cfg.OpenAI.APIKey)
		if cfg.OpenAI.BaseURL != "" {
			c.BaseURL = cfg.OpenAI.BaseURL
		}
		return &WhisperTranscriber{
			client: openai.NewClientWithConfig(c),
			model:  cfg.OpenAI.WhisperModel,
		}, nil
	}
	return nil, fmt.Errorf("no transcription provider configured: a Groq or OpenAI API key is required")
}

func (w *WhisperTranscriber) Transcribe(ctx context.Context, path string) (string, error) {
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: path,
		Language: "en",
	})
	if err != nil {
		return "", &TranscribeError{Err: err}
	}
	return strings.TrimSpace(resp.Text), nil
}
