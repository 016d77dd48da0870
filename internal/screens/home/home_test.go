package home

import (
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/arundaya/parlo/internal/agent"
	"github.com/arundaya/parlo/internal/router"
	"github.com/arundaya/parlo/internal/screen"
	"github.com/arundaya/parlo/internal/screens/practice"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestMenuListsEntries(t *testing.T) {
	h := New(practice.Deps{})
	view := h.View(80, 24)

	for _, want := range []string{"Job Interview", "Custom Scenario", "My Plan", "Dashboard", "Quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSelectScenarioPushesPractice(t *testing.T) {
	h := New(practice.Deps{})

	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command from enter")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", cmd())
	}
	if _, ok := msg.Screen.(*practice.PracticeScreen); !ok {
		t.Fatalf("expected a practice screen, got %T", msg.Screen)
	}
}

func TestCustomScenarioEntry(t *testing.T) {
	h := New(practice.Deps{})

	// Navigate to "Custom Scenario" (just past the stock scenarios).
	var s screen.Screen = h
	for i := 0; i < 4; i++ {
		s, _ = s.Update(keyPress('j'))
	}
	s, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command from enter")
	}
	s, _ = s.Update(cmd())

	hs := s.(*HomeScreen)
	if !hs.entering {
		t.Fatal("expected entry mode after selecting Custom Scenario")
	}

	for _, r := range "Coffee chat" {
		s, _ = s.Update(keyPress(r))
	}
	s, cmd = s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a push command after entering a title")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", cmd())
	}
	if _, ok := msg.Screen.(*practice.PracticeScreen); !ok {
		t.Fatalf("expected a practice screen, got %T", msg.Screen)
	}
	if s.(*HomeScreen).entering {
		t.Error("entry mode should end after starting the session")
	}
}

func TestCustomEntryEmptyTitleIgnored(t *testing.T) {
	h := New(practice.Deps{})
	s, _ := h.Update(customEntryMsg{})

	s, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil {
		t.Error("empty title should not start a session")
	}
	if !s.(*HomeScreen).entering {
		t.Error("should stay in entry mode")
	}
}

func TestCustomEntryEscCancels(t *testing.T) {
	h := New(practice.Deps{})
	s, _ := h.Update(customEntryMsg{})

	s, _ = s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if s.(*HomeScreen).entering {
		t.Error("esc should leave entry mode")
	}
}

func TestTaskErrorFallsBackToDefaultScenario(t *testing.T) {
	h := New(practice.Deps{})

	_, cmd := h.Update(taskReadyMsg{Err: errors.New("no plan")})
	if cmd == nil {
		t.Fatal("expected a fallback practice push")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("cmd() = %T, want PushScreenMsg", cmd())
	}
	if _, ok := msg.Screen.(*practice.PracticeScreen); !ok {
		t.Fatalf("pushed screen = %T, want practice", msg.Screen)
	}
}

func TestTaskReadyStartsAssignedPractice(t *testing.T) {
	h := New(practice.Deps{})

	task := agent.Task{Scenario: "Small Talk", Prompt: "Ask about my weekend."}
	_, cmd := h.Update(taskReadyMsg{Task: task})
	if cmd == nil {
		t.Fatal("expected a push command")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", cmd())
	}
	if _, ok := msg.Screen.(*practice.PracticeScreen); !ok {
		t.Fatalf("expected a practice screen, got %T", msg.Screen)
	}
}
