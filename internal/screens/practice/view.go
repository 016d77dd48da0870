package practice

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/arundaya/parlo/internal/convo"
	sess "github.com/arundaya/parlo/internal/session"
	"github.com/arundaya/parlo/internal/ui/components"
	"github.com/arundaya/parlo/internal/ui/theme"
)

func (s *PracticeScreen) View(width, height int) string {
	if s.confirmEnd {
		return renderEndConfirm(width)
	}
	switch s.state.Phase {
	case sess.PhaseEnding:
		return s.renderCentered(width, s.spin.View()+" Scoring your session...")
	case sess.PhaseEnded:
		return s.renderResults(width, height)
	}
	return s.renderConversation(width, height)
}

// renderConversation shows the transcript tail, the coaching tips, and
// the current turn status.
func (s *PracticeScreen) renderConversation(width, height int) string {
	var b strings.Builder

	headline := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render("  " + s.state.ScenarioTitle)
	b.WriteString(headline)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(0, width-4))))
	b.WriteString("\n\n")

	lineWidth := min(width-6, 76)
	if lineWidth < 20 {
		lineWidth = 20
	}
	turnStyle := lipgloss.NewStyle().Width(lineWidth).Foreground(theme.Text)
	tipStyle := lipgloss.NewStyle().Width(lineWidth).Foreground(theme.TextDim).Italic(true)

	// Fit the most recent turns into the remaining rows.
	turns := s.state.Conversation.Turns()
	maxTurns := max(2, (height-8)/3)
	start := 0
	if len(turns) > maxTurns {
		start = len(turns) - maxTurns
	}

	for i := start; i < len(turns); i++ {
		t := turns[i]
		var speaker string
		if t.Role == convo.RoleUser {
			speaker = theme.Learner.Render("You")
		} else {
			speaker = theme.Partner.Render("Partner")
		}
		b.WriteString("  " + speaker + "\n")
		b.WriteString("  " + turnStyle.Render(t.Content) + "\n")
		if tip, ok := s.tips[i]; ok && tip != "" {
			b.WriteString("  " + tipStyle.Render("tip: "+tip) + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(s.renderStatus(width))
	return b.String()
}

func (s *PracticeScreen) renderStatus(width int) string {
	var status string
	switch {
	case s.state.Recording == sess.RecordingCapturing:
		status = theme.Recording.Render("● Recording... press Space to stop")
	case s.state.Recording == sess.RecordingTranscribing:
		status = s.spin.View() + " Transcribing..."
	case s.state.DialoguePending:
		status = s.spin.View() + " Partner is thinking..."
	default:
		status = theme.Hint.Render("Press Space to speak")
	}

	out := "  " + status
	if s.statusMsg != "" {
		out += "\n  " + lipgloss.NewStyle().Foreground(theme.Error).Render(s.statusMsg)
	}
	return out
}

// renderResults shows the session feedback, the reflection and the plan
// for next time.
func (s *PracticeScreen) renderResults(width, height int) string {
	var b strings.Builder
	barWidth := min(width-8, 50)

	b.WriteString(theme.Title.Width(width).Render("Session Complete"))
	b.WriteString("\n\n")

	a := s.state.Assessment
	if a != nil && a.Scores != nil {
		sc := a.Scores
		bars := []components.ScoreBar{
			components.NewScoreBar("Overall      ", sc.Overall, true, barWidth),
			components.NewScoreBar("Pronunciation", sc.Pronunciation, true, barWidth),
			components.NewScoreBar("Grammar      ", sc.Grammar, true, barWidth),
			components.NewScoreBar("Fluency      ", sc.Fluency, true, barWidth),
			components.NewScoreBar("Vocabulary   ", sc.Vocabulary, true, barWidth),
		}
		if sc.Coherence != nil {
			bars = append(bars, components.NewScoreBar("Coherence    ", *sc.Coherence, true, barWidth))
		}
		for _, bar := range bars {
			b.WriteString("  " + bar.View() + "\n")
		}
		b.WriteString("\n")
	}

	if s.save != nil {
		if s.save.LeveledUp {
			b.WriteString("  " + lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).
				Render(fmt.Sprintf("Level up! You are now level %d.", s.save.NewLevel)) + "\n\n")
		} else if s.save.LeveledDn {
			b.WriteString("  " + lipgloss.NewStyle().Foreground(theme.TextDim).
				Render(fmt.Sprintf("Moved to level %d for a better fit.", s.save.NewLevel)) + "\n\n")
		}
	}

	textWidth := min(width-6, 76)
	bodyStyle := lipgloss.NewStyle().Width(textWidth).Foreground(theme.Text)
	dimStyle := lipgloss.NewStyle().Width(textWidth).Foreground(theme.TextDim)

	if a != nil && a.Comment != "" {
		b.WriteString("  " + bodyStyle.Render(a.Comment) + "\n\n")
	}

	if a != nil && a.Metrics != nil {
		m := a.Metrics
		b.WriteString("  " + dimStyle.Render(fmt.Sprintf(
			"%d words, %.1f%% unique, %.2f fillers/100w", m.TotalWords, m.TypeTokenRatio, m.FillerPer100W)))
		if m.SpeechRateWPM != nil {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  %.1f wpm", *m.SpeechRateWPM)))
		}
		b.WriteString("\n\n")
	}

	b.WriteString(s.renderReflection(bodyStyle, dimStyle))
	b.WriteString(s.renderPlan(bodyStyle, dimStyle))

	if s.statusMsg != "" {
		b.WriteString("  " + lipgloss.NewStyle().Foreground(theme.Error).Render(s.statusMsg) + "\n")
	}
	hint := "Press N to start the next session"
	if s.deps.Reflector != nil && s.state.Reflection == nil && !s.state.ReflectionRunning {
		hint = "Press R for reflection and a plan, N for the next session"
	}
	b.WriteString("\n  " + theme.Hint.Render(hint))
	return b.String()
}

func (s *PracticeScreen) renderReflection(body, dim lipgloss.Style) string {
	var b strings.Builder
	if s.state.ReflectionRunning {
		b.WriteString("  " + s.spin.View() + " Reflecting on the session...\n\n")
		return b.String()
	}
	r := s.state.Reflection
	if r == nil {
		return ""
	}
	b.WriteString("  " + lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("Reflection") + "\n")
	b.WriteString("  " + body.Render(r.Summary) + "\n")
	for _, obj := range r.ObjectivesNext {
		b.WriteString("  " + dim.Render("• "+obj) + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

func (s *PracticeScreen) renderPlan(body, dim lipgloss.Style) string {
	var b strings.Builder
	if s.state.PlanRunning {
		b.WriteString("  " + s.spin.View() + " Planning your next session...\n\n")
		return b.String()
	}
	p := s.state.Plan
	if p == nil {
		return ""
	}
	b.WriteString("  " + lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("Next Up") + "\n")
	b.WriteString("  " + body.Render(fmt.Sprintf("%s (level %d, ~%d min)", p.Scenario, p.Level, p.TargetTimeMin)) + "\n")
	for _, obj := range p.Objectives {
		b.WriteString("  " + dim.Render("• "+obj) + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

func (s *PracticeScreen) renderCentered(width int, text string) string {
	return "\n\n\n" + lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(text)
}

// renderEndConfirm renders the end-session confirmation dialog.
func renderEndConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render("End this session?"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("You'll get feedback on your speaking."))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Success).
		Render("[Y] Yes, end and score"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Render("[N] No, keep going"))

	return b.String()
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
