package dashboard

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/arundaya/parlo/internal/screen"
	"github.com/arundaya/parlo/internal/store"
	"github.com/arundaya/parlo/internal/ui/components"
	"github.com/arundaya/parlo/internal/ui/theme"
)

const recentLimit = 8

// loadedMsg carries everything the dashboard shows, fetched in one pass.
type loadedMsg struct {
	Profile store.Profile
	Stats   store.Stats
	Recent  []store.SessionRecord
	Err     error
}

// DashboardScreen shows the learner profile, lifetime stats and the most
// recent sessions.
type DashboardScreen struct {
	sessions store.SessionRepo
	profiles store.ProfileRepo

	loaded  bool
	profile store.Profile
	stats   store.Stats
	recent  []store.SessionRecord
	errMsg  string
}

var _ screen.Screen = (*DashboardScreen)(nil)

// New creates a dashboard screen over the given repositories.
func New(sessions store.SessionRepo, profiles store.ProfileRepo) *DashboardScreen {
	return &DashboardScreen{sessions: sessions, profiles: profiles}
}

func (d *DashboardScreen) Init() tea.Cmd {
	sessions := d.sessions
	profiles := d.profiles
	return func() tea.Msg {
		ctx := context.Background()
		if sessions == nil || profiles == nil {
			return loadedMsg{Err: fmt.Errorf("no store configured")}
		}
		prof, err := profiles.Get(ctx)
		if err != nil {
			return loadedMsg{Err: err}
		}
		stats, err := sessions.Stats(ctx)
		if err != nil {
			return loadedMsg{Err: err}
		}
		recent, err := sessions.RecentSessions(ctx, recentLimit)
		if err != nil {
			return loadedMsg{Err: err}
		}
		return loadedMsg{Profile: prof, Stats: stats, Recent: recent}
	}
}

func (d *DashboardScreen) Title() string {
	return "Dashboard"
}

func (d *DashboardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(loadedMsg); ok {
		if msg.Err != nil {
			d.errMsg = msg.Err.Error()
			return d, nil
		}
		d.loaded = true
		d.profile = msg.Profile
		d.stats = msg.Stats
		d.recent = msg.Recent
	}
	return d, nil
}

func (d *DashboardScreen) View(width, height int) string {
	if d.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Render("\n\n  Could not load your progress: " + d.errMsg)
	}
	if !d.loaded {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("\n\n  Loading...")
	}

	var b strings.Builder
	barWidth := min(width-8, 50)

	p := d.profile
	b.WriteString("  " + lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("Profile") + "\n")
	b.WriteString("  " + lipgloss.NewStyle().Foreground(theme.Text).
		Render(fmt.Sprintf("Level %d  ·  Target %s  ·  %d sessions", p.Level, p.TargetCEFR, p.SessionsCount)) + "\n\n")

	bars := []components.ScoreBar{
		components.NewScoreBar("Overall      ", p.MAOverall, true, barWidth),
		components.NewScoreBar("Pronunciation", p.MAPron, true, barWidth),
		components.NewScoreBar("Grammar      ", p.MAGrammar, true, barWidth),
		components.NewScoreBar("Fluency      ", p.MAFluency, true, barWidth),
		components.NewScoreBar("Vocabulary   ", p.MAVocabulary, true, barWidth),
	}
	for _, bar := range bars {
		b.WriteString("  " + bar.View() + "\n")
	}
	b.WriteString("\n")

	st := d.stats
	b.WriteString("  " + lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(fmt.Sprintf("%.0f minutes practiced  ·  avg %.1f  ·  best %.1f",
			st.TotalMinutes, st.AvgOverall, st.BestOverall)) + "\n\n")

	b.WriteString("  " + lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("Recent Sessions") + "\n")
	if len(d.recent) == 0 {
		b.WriteString("  " + theme.Hint.Render("No sessions yet. Pick a scenario and start talking!") + "\n")
		return b.String()
	}
	for _, rec := range d.recent {
		line := fmt.Sprintf("%-22s %4.1f  %5.1f min  %s",
			truncate(rec.Scenario, 22), rec.Overall, rec.DurationMin,
			rec.CreatedAt.Format("Jan 2 15:04"))
		b.WriteString("  " + lipgloss.NewStyle().Foreground(theme.Text).Render(line) + "\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
