// Package assess models session assessments and turns scorer output into
// bounded, displayable scores.
package assess

import (
	"strconv"
	"strings"
)

// ScoreSet holds the facet scores for one session, each in [0,10].
type ScoreSet struct {
	Pronunciation float64
	Grammar       float64
	Fluency       float64
	Vocabulary    float64
	Overall       float64

	// Coherence is present only when the scorer supplied it.
	Coherence *float64
}

// Descriptors carries the scorer's qualitative one-liners per facet.
// Pass-through text; empty strings when absent.
type Descriptors struct {
	Pronunciation string
	Grammar       string
	Fluency       string
	Vocabulary    string
	Coherence     string
}

// Standards names the rubric the scorer applied.
type Standards struct {
	Rubric string
	Notes  string
}

// Assessment is the end-of-session result. When the scorer's output
// could not be parsed, Scores is nil and Comment carries the raw text.
type Assessment struct {
	Scores      *ScoreSet
	Comment     string
	Descriptors Descriptors
	Standards   Standards
	Metrics     *ObjectiveMetrics
}

// Clamp bounds a facet score to [0,10]. Non-finite input ends up at a
// bound like any other out-of-range value.
func Clamp(x float64) float64 {
	if !(x > 0) { // catches negatives and NaN
		return 0
	}
	if x > 10 {
		return 10
	}
	return x
}

// NormalizeScores builds a bounded ScoreSet from a decoded scorer
// payload. The payload may nest facets under "scores" or carry them at
// the top level. Missing or non-numeric facets become 0. Overall is the
// scorer's value when present, otherwise the mean of the four base
// facets; either way it is clamped after derivation.
func NormalizeScores(obj map[string]any) (ScoreSet, string) {
	s := obj
	if nested, ok := obj["scores"].(map[string]any); ok {
		s = nested
	}

	set := ScoreSet{
		Pronunciation: Clamp(numberAt(s, "pronunciation")),
		Grammar:       Clamp(numberAt(s, "grammar")),
		Fluency:       Clamp(numberAt(s, "fluency")),
		Vocabulary:    Clamp(numberAt(s, "vocabulary")),
	}

	if raw, ok := s["overall"]; ok && raw != nil {
		set.Overall = Clamp(asNumber(raw))
	} else {
		set.Overall = Clamp((set.Pronunciation + set.Grammar + set.Fluency + set.Vocabulary) / 4)
	}

	if _, ok := s["coherence"]; ok {
		// Optional, but when present it is bounded like the core facets.
		coh := Clamp(numberAt(s, "coherence"))
		set.Coherence = &coh
	}

	comment, _ := obj["comment"].(string)
	return set, comment
}

func numberAt(m map[string]any, key string) float64 {
	v, ok := m[key]
	if !ok {
		return 0
	}
	return asNumber(v)
}

// asNumber tolerates the types a scorer payload can carry for a score,
// including numbers quoted as strings.
func asNumber(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
