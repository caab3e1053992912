package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"alfredoptarigan/mock-interviewer/internal/apperrors"
	"alfredoptarigan/mock-interviewer/internal/models"
)

const (
	minScore = 0
	maxScore = 100
)

// FeedbackScorer scores a finished transcript. It returns the model's JSON
// unvalidated; callers pass it through ValidateFeedback.
type FeedbackScorer interface {
	Score(ctx context.Context, transcript string) ([]byte, error)
}

type feedbackScorer struct {
	llm           LLMTask
	promptBuilder *PromptBuilder
}

func NewFeedbackScorer(llm LLMTask) FeedbackScorer {
	return &feedbackScorer{
		llm:           llm,
		promptBuilder: NewPromptBuilder(),
	}
}

func (s *feedbackScorer) Score(ctx context.Context, transcript string) ([]byte, error) {
	prompt := s.promptBuilder.BuildFeedbackPrompt(transcript)
	log.Printf("📝 Feedback prompt length: %d characters", len(prompt))

	response, err := s.llm.Execute(ctx, Task{Prompt: prompt, Temperature: 0.3})
	if err != nil {
		return nil, apperrors.Upstream(err, "feedback scoring failed")
	}

	log.Printf("✅ Feedback response received: %d characters", len(response))
	return []byte(extractJSON(response)), nil
}

// ValidateFeedback checks the scorer output against the feedback schema:
// three integer scores in [0,100] and a non-empty feedback string. Nothing
// is coerced; any violation is a schema validation error.
func ValidateFeedback(raw []byte) (*models.Feedback, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, apperrors.SchemaValidation("feedback is not a JSON object: %v", err)
	}

	var fb models.Feedback
	scores := []struct {
		key    string
		target *int
	}{
		{"communication", &fb.Communication},
		{"content", &fb.Content},
		{"confidence", &fb.Confidence},
	}

	for _, score := range scores {
		value, err := boundedInt(fields, score.key)
		if err != nil {
			return nil, err
		}
		*score.target = value
	}

	text, ok := fields["feedback"].(string)
	if !ok || strings.TrimSpace(text) == "" {
		return nil, apperrors.SchemaValidation("feedback text is missing or empty")
	}
	fb.Feedback = text

	return &fb, nil
}

func boundedInt(fields map[string]any, key string) (int, error) {
	raw, present := fields[key]
	if !present {
		return 0, apperrors.SchemaValidation("%s score is missing", key)
	}

	number, ok := raw.(json.Number)
	if !ok {
		return 0, apperrors.SchemaValidation("%s score must be an integer, got %T", key, raw)
	}

	value, err := strconv.ParseInt(number.String(), 10, 64)
	if err != nil {
		return 0, apperrors.SchemaValidation("%s score must be an integer, got %s", key, number)
	}
	if value < minScore || value > maxScore {
		return 0, apperrors.SchemaValidation("%s score %d is outside [%d,%d]", key, value, minScore, maxScore)
	}

	return int(value), nil
}

// FormatConversation renders a stored conversation for the scorer. An array
// in which every turn carries its text under a known key becomes
// "speaker: text" lines; any other payload is passed through unchanged so no
// answer is lost.
func FormatConversation(raw []byte) string {
	var turns []map[string]any
	if err := json.Unmarshal(raw, &turns); err == nil && len(turns) > 0 {
		lines := make([]string, 0, len(turns))
		for _, turn := range turns {
			text := firstString(turn, "text", "message", "content")
			if text == "" {
				return string(raw)
			}
			speaker := firstString(turn, "speaker", "sender", "role", "author")
			if speaker == "" {
				speaker = "unknown"
			}
			lines = append(lines, fmt.Sprintf("%s: %s", speaker, text))
		}
		return strings.Join(lines, "\n")
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}

	return string(raw)
}

func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
