package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/arundaya/parlo/internal/router"
	"github.com/arundaya/parlo/internal/screen"
	"github.com/arundaya/parlo/internal/screens/home"
	"github.com/arundaya/parlo/internal/screens/practice"
	"github.com/arundaya/parlo/internal/store"
	"github.com/arundaya/parlo/internal/ui/layout"
)

// Options carries the wired dependencies into the TUI.
type Options struct {
	Practice practice.Deps
	Profiles store.ProfileRepo
	Log      *slog.Logger
}

// profileMsg refreshes the header's level and session count.
type profileMsg struct {
	Profile store.Profile
	Err     error
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	opts      Options
	router    *router.Router
	width     int
	height    int
	level     int
	nSessions int
}

// newAppModel creates a new AppModel with the home screen.
func newAppModel(opts Options) AppModel {
	if opts.Log == nil {
		opts.Log = slog.New(slog.DiscardHandler)
	}
	return AppModel{
		opts:   opts,
		router: router.New(home.New(opts.Practice)),
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.loadProfile()
}

// loadProfile refreshes the header stats off the update loop.
func (m AppModel) loadProfile() tea.Cmd {
	profiles := m.opts.Profiles
	if profiles == nil {
		return nil
	}
	return func() tea.Msg {
		prof, err := profiles.Get(context.Background())
		return profileMsg{Profile: prof, Err: err}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case profileMsg:
		if msg.Err == nil {
			m.level = msg.Profile.Level
			m.nSessions = msg.Profile.SessionsCount
		}
		return m, nil

	case router.PopScreenMsg:
		// Returning from a screen may have changed the profile.
		cmd := m.router.Update(msg)
		return m, tea.Batch(cmd, m.loadProfile())

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.level, m.nSessions, m.width)

	footerHints := m.footerHints(active)
	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if hp, ok := active.(screen.KeyHintProvider); ok {
		if hints := hp.KeyHints(); len(hints) > 0 {
			if m.router.Depth() > 1 {
				hints = append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
			}
			return hints
		}
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
