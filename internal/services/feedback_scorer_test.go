package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/mock-interviewer/internal/apperrors"
	"alfredoptarigan/mock-interviewer/internal/models"
)

func TestValidateFeedback(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    *models.Feedback
		wantErr bool
	}{
		{
			name: "valid",
			raw:  `{"communication": 0, "content": 100, "confidence": 55, "feedback": "Good."}`,
			want: &models.Feedback{Communication: 0, Content: 100, Confidence: 55, Feedback: "Good."},
		},
		{name: "above range", raw: `{"communication": 101, "content": 1, "confidence": 1, "feedback": "x"}`, wantErr: true},
		{name: "negative", raw: `{"communication": -1, "content": 1, "confidence": 1, "feedback": "x"}`, wantErr: true},
		{name: "fractional", raw: `{"communication": 80.5, "content": 1, "confidence": 1, "feedback": "x"}`, wantErr: true},
		{name: "string score", raw: `{"communication": "80", "content": 1, "confidence": 1, "feedback": "x"}`, wantErr: true},
		{name: "missing score", raw: `{"communication": 80, "content": 1, "feedback": "x"}`, wantErr: true},
		{name: "empty feedback", raw: `{"communication": 80, "content": 1, "confidence": 1, "feedback": "  "}`, wantErr: true},
		{name: "feedback not string", raw: `{"communication": 80, "content": 1, "confidence": 1, "feedback": 3}`, wantErr: true},
		{name: "array", raw: `[1,2,3]`, wantErr: true},
		{name: "not json", raw: `great job`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateFeedback([]byte(tt.raw))
			if tt.wantErr {
				assert.True(t, apperrors.IsKind(err, apperrors.KindSchemaValidation), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFeedbackScorerExtractsJSON(t *testing.T) {
	var prompt string
	llm := LLMTaskFunc(func(ctx context.Context, task Task) (string, error) {
		prompt = task.Prompt
		return "Here you go:\n```json\n{\"communication\": 70, \"content\": 60, \"confidence\": 50, \"feedback\": \"ok\"}\n```", nil
	})

	raw, err := NewFeedbackScorer(llm).Score(context.Background(), "candidate: hi")
	require.NoError(t, err)
	assert.Contains(t, prompt, "candidate: hi")

	fb, err := ValidateFeedback(raw)
	require.NoError(t, err)
	assert.Equal(t, 70, fb.Communication)
}

func TestFeedbackScorerUpstreamFailure(t *testing.T) {
	llm := LLMTaskFunc(func(ctx context.Context, task Task) (string, error) {
		return "", errors.New("503")
	})

	_, err := NewFeedbackScorer(llm).Score(context.Background(), "t")
	assert.True(t, apperrors.IsKind(err, apperrors.KindUpstream))
}

func TestFormatConversation(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "turn objects",
			raw:  `[{"speaker":"interviewer","text":"Why us?"},{"role":"candidate","message":"Mission."}]`,
			want: "interviewer: Why us?\ncandidate: Mission.",
		},
		{
			name: "unknown text keys pass through",
			raw:  `[{"role":"interviewer","text":"Why Acme?"},{"role":"candidate","answer":"Because of the mission."},{"role":"candidate","transcript":"I led the migration."}]`,
			want: `[{"role":"interviewer","text":"Why Acme?"},{"role":"candidate","answer":"Because of the mission."},{"role":"candidate","transcript":"I led the migration."}]`,
		},
		{
			name: "empty turn text passes through",
			raw:  `[{"speaker":"interviewer","text":"Why us?"},{"speaker":"candidate","text":""}]`,
			want: `[{"speaker":"interviewer","text":"Why us?"},{"speaker":"candidate","text":""}]`,
		},
		{name: "missing speaker", raw: `[{"content":"hello"}]`, want: "unknown: hello"},
		{name: "json string", raw: `"interviewer: hi"`, want: "interviewer: hi"},
		{name: "other shapes pass through", raw: `{"a":1}`, want: `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatConversation([]byte(tt.raw)))
		})
	}
}
