package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type openAIService struct {
	client     openai.Client
	model      string
	maxRetries int
	timeout    time.Duration
}

// NewOpenAIService builds an LLMTask backed by the chat completions API.
// baseURL may point at any OpenAI-compatible endpoint.
func NewOpenAIService(apiKey, baseURL, model string, maxRetries int, timeout time.Duration) LLMTask {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	if model == "" {
		model = "gpt-3.5-turbo"
	}

	return &openAIService{
		client:     openai.NewClient(opts...),
		model:      model,
		maxRetries: maxRetries,
		timeout:    timeout,
	}
}

// Execute implements LLMTask.
func (o *openAIService) Execute(ctx context.Context, task Task) (string, error) {
	ctx, cancel := withTimeout(ctx, o.timeout)
	defer cancel()

	return generateWithRetry(ctx, o.maxRetries, func(ctx context.Context) (string, error) {
		return o.complete(ctx, task)
	})
}

func (o *openAIService) complete(ctx context.Context, task Task) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(task.Prompt),
		},
		Temperature: openai.Float(float64(task.Temperature)),
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		log.Printf("❌ OpenAI API error: %v\n", err)
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	text := resp.Choices[0].Message.Content
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}

	return text, nil
}
