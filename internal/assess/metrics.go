package assess

import (
	"math"
	"regexp"
	"strings"
)

// ObjectiveMetrics are deterministic lexical/temporal statistics computed
// locally from the learner's own turns. They accompany the subjective
// scores so a session has some signal even when the scorer fails.
type ObjectiveMetrics struct {
	TotalWords       int      `json:"total_words"`
	UniqueWords      int      `json:"unique_words"`
	TypeTokenRatio   float64  `json:"type_token_ratio"`  // percent, 1 decimal
	AvgSentenceLen   float64  `json:"avg_sentence_len"`  // words, 2 decimals
	FillerPer100W    float64  `json:"filler_per_100w"`   // 2 decimals
	MeanUtteranceLen float64  `json:"mean_utterance_len"` // words, 2 decimals
	SpeechRateWPM    *float64 `json:"speech_rate_wpm"`   // nil without a duration
}

var (
	wordRe     = regexp.MustCompile(`[A-Za-z']+`)
	sentenceRe = regexp.MustCompile(`[.!?]+`)

	singleFillers = []string{"um", "uh", "erm", "ah", "like", "actually", "basically", "literally", "so"}
	phraseFillers = []string{"you know", "sort of", "kind of"}

	singleFillerRes = func() map[string]*regexp.Regexp {
		out := make(map[string]*regexp.Regexp, len(singleFillers))
		for _, f := range singleFillers {
			out[f] = regexp.MustCompile(`\b` + f + `\b`)
		}
		return out
	}()
)

// ComputeMetrics derives objective metrics from the learner's utterances.
// durationMin <= 0 leaves the speech rate unset.
func ComputeMetrics(utterances []string, durationMin float64) ObjectiveMetrics {
	text := strings.ToLower(strings.Join(utterances, "\n"))
	words := wordRe.FindAllString(text, -1)

	total := len(words)
	uniq := map[string]struct{}{}
	for _, w := range words {
		uniq[w] = struct{}{}
	}

	m := ObjectiveMetrics{
		TotalWords:  total,
		UniqueWords: len(uniq),
	}

	if total > 0 {
		m.TypeTokenRatio = round(float64(len(uniq))/float64(total)*100, 1)
		m.FillerPer100W = round(float64(countFillers(text))/float64(total)*100, 2)
	}

	if sents := sentences(text); len(sents) > 0 {
		m.AvgSentenceLen = round(float64(total)/float64(len(sents)), 2)
	}
	if len(utterances) > 0 {
		m.MeanUtteranceLen = round(float64(total)/float64(len(utterances)), 2)
	}
	if durationMin > 0 {
		wpm := round(float64(total)/durationMin, 1)
		m.SpeechRateWPM = &wpm
	}

	return m
}

func sentences(text string) []string {
	var out []string
	for _, p := range sentenceRe.Split(text, -1) {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

func countFillers(text string) int {
	n := 0
	for _, re := range singleFillerRes {
		n += len(re.FindAllString(text, -1))
	}
	padded := " " + text + " "
	for _, f := range phraseFillers {
		n += strings.Count(padded, " "+f+" ")
	}
	return n
}

func round(x float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(x*pow) / pow
}
