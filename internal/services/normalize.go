package services

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const maxNormalizeDepth = 4

var listMarker = regexp.MustCompile(`^\s*(?:[-*•]|\(?\d+[.):]|[Qq]\d+[.):])\s*`)

func stripFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// extractJSON tries to extract JSON from text that might contain markdown or other formatting
func extractJSON(text string) string {
	text = stripFences(text)

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	arrayFirst := startArr != -1 && (startObj == -1 || startArr < startObj)

	if arrayFirst && endArr > startArr {
		return text[startArr : endArr+1]
	}
	if startObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	}
	if startArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return text
}

// NormalizeQuestions turns whatever the generator returned into a plain
// ordered list of question strings. JSON arrays, objects with a "questions"
// key, per-question objects and double-encoded JSON are all unwrapped;
// anything else is read as a numbered or bulleted list.
func NormalizeQuestions(raw string) []string {
	stripped := stripFences(raw)

	var value any
	if err := json.Unmarshal([]byte(stripped), &value); err == nil {
		return collectQuestions(value, 0)
	}

	// A JSON span counts only when it is the bulk of the reply; a bracketed
	// value quoted inside a question is not the result.
	if span := extractJSON(raw); dominantSpan(span, stripped) {
		if err := json.Unmarshal([]byte(span), &value); err == nil {
			return collectQuestions(value, 0)
		}
	}

	return parseQuestionLines(raw)
}

func dominantSpan(span, text string) bool {
	if span == "" || span == text {
		return false
	}
	if strings.HasPrefix(text, "[") || strings.HasPrefix(text, "{") {
		return true
	}
	return utf8.RuneCountInString(span)*2 >= utf8.RuneCountInString(text)
}

func collectQuestions(value any, depth int) []string {
	if depth > maxNormalizeDepth {
		return nil
	}

	switch v := value.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{") {
			var nested any
			if err := json.Unmarshal([]byte(s), &nested); err == nil {
				return collectQuestions(nested, depth+1)
			}
		}
		return []string{s}
	case float64:
		return []string{strconv.FormatFloat(v, 'f', -1, 64)}
	case bool:
		return []string{strconv.FormatBool(v)}
	case []any:
		var out []string
		for _, item := range v {
			out = append(out, collectQuestions(item, depth+1)...)
		}
		return out
	case map[string]any:
		for _, key := range []string{"questions", "items", "data"} {
			if nested, ok := v[key]; ok {
				return collectQuestions(nested, depth+1)
			}
		}
		for _, key := range []string{"question", "text", "content"} {
			if s, ok := v[key].(string); ok && strings.TrimSpace(s) != "" {
				return []string{strings.TrimSpace(s)}
			}
		}
	}

	return nil
}

// parseQuestionLines reads a list reply. When any line carries a list marker
// only marked lines are kept, so preambles and closing remarks drop out.
// Without markers, lines containing a question mark win if there are any.
func parseQuestionLines(raw string) []string {
	var (
		marked   []string
		unmarked []string
		asked    []string
	)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}
		isItem := listMarker.MatchString(line)
		line = strings.Trim(listMarker.ReplaceAllString(line, ""), "\"' ,")
		if line == "" {
			continue
		}

		switch {
		case isItem:
			marked = append(marked, line)
		default:
			unmarked = append(unmarked, line)
			if strings.Contains(line, "?") {
				asked = append(asked, line)
			}
		}
	}

	if len(marked) > 0 {
		return marked
	}
	if len(asked) > 0 {
		return asked
	}
	return unmarked
}
