// Package coach derives short coaching tips from a learner utterance.
//
// Tips are computed locally with an ordered rule list; no network call is
// involved. The first matching rule wins, so rule order is the precedence.
package coach

import (
	"regexp"
	"strings"
)

// longSentenceWords is the word count above which an utterance is
// considered too long for clear spoken delivery.
const longSentenceWords = 30

// tipRule pairs a predicate with the tip it produces.
type tipRule struct {
	name  string
	match func(text string) bool
	tip   string
}

var (
	fillerRe       = regexp.MustCompile(`\b(uh|um|like|you know)\b`)
	negationRe     = regexp.MustCompile(`\b(i\s*am\s*not|don't|doesn't|didn't)\b`)
	terminalRe     = regexp.MustCompile(`[.?!)]$`)
	weakVeryRe     = regexp.MustCompile(`\bvery\b`)
	whitespaceOnly = regexp.MustCompile(`^\s*$`)
)

// rules in precedence order: fillers beat length, length beats punctuation,
// punctuation beats weak intensifiers.
var rules = []tipRule{
	{
		name:  "filler_words",
		match: func(t string) bool { return fillerRe.MatchString(t) },
		tip:   "Reduce filler words (um, uh, like). Pause briefly instead.",
	},
	{
		name: "long_sentence",
		match: func(t string) bool {
			return len(strings.Fields(t)) > longSentenceWords
		},
		tip: "Use shorter sentences to improve clarity.",
	},
	{
		name: "trailing_negation",
		match: func(t string) bool {
			return negationRe.MatchString(t) && !terminalRe.MatchString(strings.TrimSpace(t))
		},
		tip: "Finish sentences with clear punctuation when writing.",
	},
	{
		name:  "weak_intensifier",
		match: func(t string) bool { return weakVeryRe.MatchString(t) },
		tip:   "Try stronger adjectives instead of 'very' (e.g., 'excellent' instead of 'very good').",
	},
}

// defaultTip is returned when no rule matches a non-empty utterance.
const defaultTip = "Aim for natural rhythm: speak in thought groups."

// emptyTip is returned for empty or whitespace-only input.
const emptyTip = "Keep answers concise and clear."

// Tip returns a one-line coaching tip for the given learner text.
func Tip(text string) string {
	t := strings.ToLower(text)
	if whitespaceOnly.MatchString(t) {
		return emptyTip
	}
	for _, r := range rules {
		if r.match(t) {
			return r.tip
		}
	}
	return defaultTip
}
