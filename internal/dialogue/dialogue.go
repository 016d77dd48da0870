// Package dialogue produces the assistant's next line in a practice
// conversation.
package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/arundaya/parlo/internal/convo"
	"github.com/arundaya/parlo/internal/llm"
)

// historyCap bounds how many turns are sent per request. The session
// keeps the full transcript.
const historyCap = 40

// UnavailableError reports that the dialogue backend failed to produce a
// line. The practice loop shows a fallback assistant turn and lets the
// learner retry.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("dialogue unavailable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Service requests assistant replies from the configured model.
type Service struct {
	provider llm.Provider
}

func NewService(p llm.Provider) *Service {
	return &Service{provider: p}
}

// NextLine returns the assistant's reply for the conversation so far.
// scenarioTitle steers the roleplay ("Job Interview", "Custom", …).
func (s *Service) NextLine(ctx context.Context, scenarioTitle string, conv *convo.Conversation) (string, error) {
	req := llm.Request{
		System:      systemPrompt(scenarioTitle),
		Messages:    toMessages(conv.Tail(historyCap)),
		Temperature: 0.3,
		MaxTokens:   512,
	}

	resp, err := s.provider.Generate(llm.WithPurpose(ctx, "dialogue"), req)
	if err != nil {
		return "", &UnavailableError{Err: err}
	}

	line := strings.TrimSpace(string(resp.Content))
	if line == "" {
		return "", &UnavailableError{Err: fmt.Errorf("empty reply")}
	}
	return line, nil
}

func systemPrompt(scenarioTitle string) string {
	return "You are an English speaking practice assistant for TOEFL/IELTS. " +
		"Keep replies 2-5 sentences. Ask one question at a time. " +
		"Add one short improvement tip at the end. " +
		"Scenario: " + scenarioTitle
}

func toMessages(turns []convo.Turn) []llm.Message {
	msgs := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		role := llm.RoleUser
		if t.Role == convo.RoleAssistant {
			role = llm.RoleAssistant
		}
		if t.Role == convo.RoleSystem {
			// System seeds ride in Request.System; skip them here.
			continue
		}
		msgs = append(msgs, llm.Message{Role: role, Content: t.Content})
	}
	return msgs
}
