package assess

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fencedBlockRe = regexp.MustCompile("(?s)```(?:[a-zA-Z]+)?\\s*(\\{.*?\\})\\s*```")
	labelledRe    = regexp.MustCompile(`(?i)(pronunciation|grammar|fluency|vocabulary|overall)\s*:\s*([0-9]+(?:\.[0-9]+)?)(?:\s*/\s*10)?`)
)

// commentCap bounds the comment taken from unstructured scorer text.
const commentCap = 900

// ExtractPayload salvages a score payload from free-form scorer text.
// Tried in order: a fenced JSON block, the first brace-balanced object,
// then labelled "Pronunciation: 7/10" style lines. Returns false when
// nothing usable is found.
func ExtractPayload(text string) (map[string]any, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}

	if m := fencedBlockRe.FindStringSubmatch(text); m != nil {
		if obj := tryUnmarshal(m[1]); obj != nil {
			return obj, true
		}
	}

	if candidate := balancedObject(text); candidate != "" {
		if obj := tryUnmarshal(candidate); obj != nil {
			return obj, true
		}
	}

	return labelledScores(text)
}

func tryUnmarshal(s string) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil
	}
	return obj
}

// balancedObject returns the first top-level {...} span, or "".
func balancedObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

// labelledScores scrapes "Facet: N" or "Facet: N/10" mentions. Any base
// facet present makes the result usable; the whole text becomes the
// comment.
func labelledScores(text string) (map[string]any, bool) {
	scores := map[string]any{}
	for _, m := range labelledRe.FindAllStringSubmatch(text, -1) {
		key := strings.ToLower(m[1])
		if _, seen := scores[key]; seen {
			continue
		}
		scores[key] = asNumber(m[2])
	}

	hasBase := false
	for _, k := range []string{"pronunciation", "grammar", "fluency", "vocabulary"} {
		if _, ok := scores[k]; ok {
			hasBase = true
			break
		}
	}
	if !hasBase {
		return nil, false
	}

	comment := strings.TrimSpace(text)
	if len(comment) > commentCap {
		comment = comment[:commentCap]
	}
	return map[string]any{"scores": scores, "comment": comment}, true
}
