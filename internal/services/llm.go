package services

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Task is one delegated model call.
type Task struct {
	Prompt      string
	Temperature float32
	// ResearchQuery is consumed by tool-augmented tasks; plain providers ignore it.
	ResearchQuery string
}

// LLMTask is the single capability every collaborator is built on.
type LLMTask interface {
	Execute(ctx context.Context, task Task) (string, error)
}

// Embedder turns text into a vector for the question bank.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// LLMTaskFunc adapts a function to LLMTask.
type LLMTaskFunc func(ctx context.Context, task Task) (string, error)

func (f LLMTaskFunc) Execute(ctx context.Context, task Task) (string, error) {
	return f(ctx, task)
}

const retryBaseDelay = 500 * time.Millisecond

func generateWithRetry(ctx context.Context, maxRetries int, generate func(ctx context.Context) (string, error)) (string, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		result, err := generate(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == maxRetries {
			break
		}
		log.Printf("⚠️ Attempt %d failed: %v. Retrying...\n", attempt, err)

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("context cancelled: %w", ctx.Err())
		case <-time.After(time.Duration(attempt) * retryBaseDelay):
		}
	}

	return "", fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
