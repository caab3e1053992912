package services

import (
	"context"
	"strings"

	"alfredoptarigan/mock-interviewer/internal/apperrors"
)

// DialogueResponder produces the interviewer's next utterance. Implementations
// must return exactly one question; the reply is passed through unparsed.
type DialogueResponder interface {
	RespondTo(ctx context.Context, userUtterance string, remainingQuestions []string) (string, error)
}

type dialogueResponder struct {
	llm           LLMTask
	promptBuilder *PromptBuilder
	temperature   float32
}

func NewDialogueResponder(llm LLMTask, temperature float32) DialogueResponder {
	return &dialogueResponder{
		llm:           llm,
		promptBuilder: NewPromptBuilder(),
		temperature:   temperature,
	}
}

func (r *dialogueResponder) RespondTo(ctx context.Context, userUtterance string, remainingQuestions []string) (string, error) {
	prompt := r.promptBuilder.BuildResponsePrompt(userUtterance, remainingQuestions)

	reply, err := r.llm.Execute(ctx, Task{Prompt: prompt, Temperature: r.temperature})
	if err != nil {
		return "", apperrors.Upstream(err, "interviewer response failed")
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", apperrors.New(apperrors.KindUpstream, "interviewer returned an empty reply")
	}

	return reply, nil
}
