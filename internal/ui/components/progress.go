package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/arundaya/parlo/internal/ui/theme"
)

// ScoreBar displays a labelled horizontal bar for a 0-10 score.
type ScoreBar struct {
	Label     string
	Score     float64
	ShowValue bool
	Width     int
}

// NewScoreBar creates a new score bar.
func NewScoreBar(label string, score float64, showValue bool, width int) ScoreBar {
	return ScoreBar{
		Label:     label,
		Score:     score,
		ShowValue: showValue,
		Width:     width,
	}
}

// fillColor picks the bar color by score band.
func (p ScoreBar) fillColor() color.Color {
	switch {
	case p.Score >= 7.5:
		return theme.Success
	case p.Score >= 4.0:
		return theme.Secondary
	default:
		return theme.Error
	}
}

// View renders the score bar.
func (p ScoreBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	labelWidth := lipgloss.Width(result)
	valueWidth := 0
	if p.ShowValue {
		valueWidth = 7 // "  10.0"
	}

	barWidth := p.Width - labelWidth - valueWidth
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.Score / 10.0)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	empty := barWidth - filled

	filledStr := lipgloss.NewStyle().
		Background(p.fillColor()).
		Render(strings.Repeat(" ", filled))

	emptyStr := lipgloss.NewStyle().
		Background(theme.Border).
		Render(strings.Repeat(" ", empty))

	result += filledStr + emptyStr

	if p.ShowValue {
		result += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %.1f", p.Score))
	}

	return result
}
