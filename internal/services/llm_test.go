package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateWithRetrySingleAttempt(t *testing.T) {
	calls := 0
	_, err := generateWithRetry(context.Background(), 1, func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("quota exceeded")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestGenerateWithRetryRecovers(t *testing.T) {
	calls := 0
	out, err := generateWithRetry(context.Background(), 2, func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 2, calls)
}

func TestGenerateWithRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := generateWithRetry(ctx, 5, func(ctx context.Context) (string, error) {
		calls++
		cancel()
		return "", errors.New("boom")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
}
