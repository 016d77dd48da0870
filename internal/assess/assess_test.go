package assess

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{-3, 0},
		{0, 0},
		{7.5, 7.5},
		{10, 10},
		{42, 10},
		{math.NaN(), 0},
		{math.Inf(1), 10},
		{math.Inf(-1), 0},
	}
	for _, tc := range cases {
		if got := Clamp(tc.in); got != tc.want {
			t.Errorf("Clamp(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeScoresDerivesOverall(t *testing.T) {
	set, _ := NormalizeScores(map[string]any{
		"scores": map[string]any{
			"pronunciation": 8.0,
			"grammar":       6.0,
			"fluency":       7.0,
			"vocabulary":    5.0,
		},
	})
	if set.Overall != 6.5 {
		t.Errorf("Overall = %v, want mean 6.5", set.Overall)
	}
	if set.Coherence != nil {
		t.Error("Coherence should be absent when not supplied")
	}
}

func TestNormalizeScoresKeepsServerOverall(t *testing.T) {
	set, _ := NormalizeScores(map[string]any{
		"scores": map[string]any{
			"pronunciation": 8.0,
			"grammar":       6.0,
			"fluency":       7.0,
			"vocabulary":    5.0,
			"overall":       9.0,
		},
	})
	if set.Overall != 9 {
		t.Errorf("Overall = %v, want server value 9", set.Overall)
	}
}

func TestNormalizeScoresClampsBeforeDeriving(t *testing.T) {
	// 14 clamps to 10; the mean must use the clamped values.
	set, _ := NormalizeScores(map[string]any{
		"scores": map[string]any{
			"pronunciation": 14.0,
			"grammar":       10.0,
			"fluency":       10.0,
			"vocabulary":    10.0,
		},
	})
	if set.Pronunciation != 10 {
		t.Errorf("Pronunciation = %v, want 10", set.Pronunciation)
	}
	if set.Overall != 10 {
		t.Errorf("Overall = %v, want 10 (mean of clamped)", set.Overall)
	}
}

func TestNormalizeScoresHostileInput(t *testing.T) {
	set, comment := NormalizeScores(map[string]any{
		"scores": map[string]any{
			"pronunciation": "7",
			"grammar":       "loud",
			"fluency":       nil,
			"vocabulary":    -2.0,
			"coherence":     99.0,
		},
		"comment": "ok",
	})
	if set.Pronunciation != 7 {
		t.Errorf("quoted number should parse, got %v", set.Pronunciation)
	}
	if set.Grammar != 0 || set.Fluency != 0 || set.Vocabulary != 0 {
		t.Errorf("non-numeric/missing/negative should be 0, got %+v", set)
	}
	if set.Coherence == nil || *set.Coherence != 10 {
		t.Errorf("coherence should be present and clamped, got %v", set.Coherence)
	}
	for _, f := range []float64{set.Pronunciation, set.Grammar, set.Fluency, set.Vocabulary, set.Overall} {
		if f < 0 || f > 10 {
			t.Errorf("facet %v out of [0,10]", f)
		}
	}
	if comment != "ok" {
		t.Errorf("comment = %q", comment)
	}
}

func TestNormalizeScoresFlatPayload(t *testing.T) {
	// Facets at the top level, no "scores" wrapper.
	set, _ := NormalizeScores(map[string]any{
		"pronunciation": 6.0,
		"grammar":       6.0,
		"fluency":       6.0,
		"vocabulary":    6.0,
	})
	if set.Overall != 6 {
		t.Errorf("Overall = %v, want 6", set.Overall)
	}
}
