// Package agent holds the post-session coaching brain: reflection on a
// finished session, planning the next one, and the queue of assigned
// practice tasks.
package agent

// ErrorPattern is one recurring mistake the reflection identified.
type ErrorPattern struct {
	Tag         string   `json:"tag"`
	Description string   `json:"description"`
	Examples    []string `json:"examples,omitempty"`
	Weight      float64  `json:"weight,omitempty"`
}

// VocabTarget groups vocabulary to work into upcoming sessions.
type VocabTarget struct {
	Topic string   `json:"topic"`
	Items []string `json:"items"`
}

// Reflection is the critic's read on a finished session.
type Reflection struct {
	Summary        string         `json:"summary"`
	ErrorPatterns  []ErrorPattern `json:"error_patterns"`
	VocabTargets   []VocabTarget  `json:"vocab_targets"`
	ObjectivesNext []string       `json:"objectives_next"`
}

// fallbackSummary is the placeholder when reflection fails. The planner
// depends on a structurally valid Reflection, so failure produces this
// instead of raw error text.
const fallbackSummary = "Reflection failed to generate."

// FallbackReflection returns the placeholder shown when the critic call
// fails.
func FallbackReflection() Reflection {
	return Reflection{Summary: fallbackSummary}
}

// IsFallback reports whether the reflection is the failure placeholder.
func (r Reflection) IsFallback() bool {
	return r.Summary == fallbackSummary && len(r.ErrorPatterns) == 0
}

// Plan describes the next practice session.
type Plan struct {
	Scenario      string   `json:"scenario"`
	Level         int      `json:"level"`
	Objectives    []string `json:"objectives"`
	Rubric        []string `json:"rubric"`
	StarterTurns  []string `json:"starter_turns"`
	TargetTimeMin int      `json:"target_time_min"`
}

// Opening returns the plan's first starter turn, or "" when it has none.
func (p Plan) Opening() string {
	if len(p.StarterTurns) == 0 {
		return ""
	}
	return p.StarterTurns[0]
}
