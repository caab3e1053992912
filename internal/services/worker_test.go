package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/mock-interviewer/internal/models"
	"alfredoptarigan/mock-interviewer/internal/repositories"
)

type memoryBank struct {
	mu      sync.Mutex
	entries map[string]BankEntry
}

func newMemoryBank() *memoryBank {
	return &memoryBank{entries: make(map[string]BankEntry)}
}

func (b *memoryBank) InitCollection(ctx context.Context) error { return nil }

func (b *memoryBank) Upsert(ctx context.Context, entry BankEntry, embedding []float32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[entry.Key] = entry
	return nil
}

func (b *memoryBank) SearchSimilar(ctx context.Context, queryEmbedding []float32, docType string, limit int) ([]SearchResult, error) {
	return nil, nil
}

func (b *memoryBank) DeleteBySource(ctx context.Context, sourceID string) error { return nil }

func (b *memoryBank) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

type constEmbedder struct {
	err error
}

func (e constEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func seedInterviewingSession(t *testing.T, repo repositories.SessionRepository, id string) {
	t.Helper()
	require.NoError(t, repo.Create(&models.Session{
		ID:     id,
		State:  models.StateCreated,
		Intake: models.Intake{DesiredJob: "SRE", QuestionCount: 2, Difficulty: "hard", Company: "Acme"},
	}))
	require.NoError(t, repo.SaveQuestions(id, []string{"Q1?", "Q2?"}))
}

func TestWorkerIndexesSessionQuestions(t *testing.T) {
	repo, err := repositories.NewFileSessionRepository(t.TempDir())
	require.NoError(t, err)
	seedInterviewingSession(t, repo, "s1")

	bank := newMemoryBank()
	w := NewWorker(repo, bank, constEmbedder{}, 1)
	w.Start(context.Background())
	defer w.Stop()

	w.EnqueueJob("s1")

	require.Eventually(t, func() bool { return bank.count() == 2 }, 2*time.Second, 10*time.Millisecond)

	bank.mu.Lock()
	entry := bank.entries["s1:1"]
	bank.mu.Unlock()
	assert.Equal(t, BankEntry{
		Key:         "s1:1",
		SourceID:    "s1",
		DocType:     DocTypeGenerated,
		JobPosition: "SRE",
		Difficulty:  "hard",
		Text:        "Q2?",
	}, entry)
}

func TestWorkerIndexSessionErrors(t *testing.T) {
	repo, err := repositories.NewFileSessionRepository(t.TempDir())
	require.NoError(t, err)
	seedInterviewingSession(t, repo, "s1")

	w := NewWorker(repo, newMemoryBank(), constEmbedder{err: errors.New("quota")}, 1).(*worker)

	assert.ErrorContains(t, w.indexSession(context.Background(), "s1"), "failed to embed question 0")
	assert.ErrorContains(t, w.indexSession(context.Background(), "missing"), "failed to load session")
}

func TestWorkerStopIsIdempotent(t *testing.T) {
	repo, err := repositories.NewFileSessionRepository(t.TempDir())
	require.NoError(t, err)

	w := NewWorker(repo, newMemoryBank(), constEmbedder{}, 2)
	w.Start(context.Background())
	w.Stop()
	w.Stop()

	w.EnqueueJob("late")
}
