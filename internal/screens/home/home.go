package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/arundaya/parlo/internal/agent"
	"github.com/arundaya/parlo/internal/router"
	"github.com/arundaya/parlo/internal/scenario"
	"github.com/arundaya/parlo/internal/screen"
	"github.com/arundaya/parlo/internal/screens/dashboard"
	"github.com/arundaya/parlo/internal/screens/practice"
	"github.com/arundaya/parlo/internal/ui/components"
	"github.com/arundaya/parlo/internal/ui/layout"
	"github.com/arundaya/parlo/internal/ui/theme"
)

// customEntryMsg switches the home screen into custom scenario entry.
type customEntryMsg struct{}

// taskReadyMsg carries the next assigned plan item, fetched when the
// learner picks "My Plan".
type taskReadyMsg struct {
	Task agent.Task
	Err  error
}

// HomeScreen is the scenario picker and entry point of the app.
type HomeScreen struct {
	deps      practice.Deps
	menu      components.Menu
	input     components.TextInput
	entering  bool
	statusMsg string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates the home screen. The practice dependencies are captured by
// the menu actions so every practice mode launches fully wired.
func New(deps practice.Deps) *HomeScreen {
	var items []components.MenuItem
	for _, sc := range scenario.All() {
		sc := sc
		items = append(items, components.MenuItem{
			Label:       sc.Title,
			Description: sc.Description,
			Action: func() tea.Cmd {
				return func() tea.Msg {
					return router.PushScreenMsg{Screen: practice.New(deps, sc)}
				}
			},
		})
	}

	items = append(items,
		components.MenuItem{
			Label:       "Custom Scenario",
			Description: "Describe your own practice setting",
			Action: func() tea.Cmd {
				return func() tea.Msg { return customEntryMsg{} }
			},
		},
		components.MenuItem{
			Label:       "My Plan",
			Description: "Practice the next item on your study plan",
			Disabled:    deps.Tasks == nil,
			Action: func() tea.Cmd {
				tasks := deps.Tasks
				return func() tea.Msg {
					task, err := tasks.Next(context.Background())
					return taskReadyMsg{Task: task, Err: err}
				}
			},
		},
		components.MenuItem{
			Label:       "Dashboard",
			Description: "Your progress and recent sessions",
			Action: func() tea.Cmd {
				return func() tea.Msg {
					return router.PushScreenMsg{Screen: dashboard.New(deps.Sessions, deps.Profiles)}
				}
			},
		},
		components.MenuItem{
			Label: "Quit",
			Action: func() tea.Cmd {
				return tea.Quit
			},
		},
	)

	return &HomeScreen{
		deps: deps,
		menu: components.NewMenu(items),
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	if h.entering {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Start"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case customEntryMsg:
		h.entering = true
		h.input = components.NewTextInput("e.g. Ordering at a restaurant", 60)
		return h, h.input.Init()

	case taskReadyMsg:
		if msg.Err != nil {
			// Practice still starts when the plan store is unreachable,
			// just without an assigned task.
			def := scenario.ByID("2")
			return h, func() tea.Msg {
				return router.PushScreenMsg{Screen: practice.New(h.deps, def)}
			}
		}
		task := msg.Task
		return h, func() tea.Msg {
			return router.PushScreenMsg{Screen: practice.NewFromTask(h.deps, task)}
		}

	case tea.KeyMsg:
		if h.entering {
			return h.handleEntryKey(msg)
		}
		h.statusMsg = ""
		var cmd tea.Cmd
		h.menu, cmd = h.menu.Update(msg)
		return h, cmd
	}
	return h, nil
}

func (h *HomeScreen) handleEntryKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		h.entering = false
		return h, nil
	case "enter":
		title := h.input.Value()
		if title == "" {
			return h, nil
		}
		h.entering = false
		sc := scenario.Scenario{
			ID:      scenario.CustomID,
			Title:   title,
			Opening: fmt.Sprintf("Let's practice \"%s\". Set the scene for me, how does it start?", title),
		}
		deps := h.deps
		return h, func() tea.Msg {
			return router.PushScreenMsg{Screen: practice.New(deps, sc)}
		}
	}
	var cmd tea.Cmd
	h.input, cmd = h.input.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render("Parlo"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(width).Render("Speak a little English every day"))
	b.WriteString("\n\n")

	if h.entering {
		prompt := lipgloss.NewStyle().Foreground(theme.Text).Render("What would you like to practice?")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, prompt))
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, h.input.View()))
		return b.String()
	}

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, h.menu.View()))

	if h.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Render(h.statusMsg))
	}
	return b.String()
}
