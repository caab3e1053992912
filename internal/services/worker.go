package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"alfredoptarigan/mock-interviewer/internal/repositories"
)

// Worker indexes the questions of a session into the question bank in the
// background so later sessions for similar roles can use them as references.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(sessionID string)
}

type worker struct {
	repo        repositories.SessionRepository
	bank        QuestionBank
	embedder    Embedder
	jobQueue    chan string
	concurrency int
	wg          sync.WaitGroup
	stopChan    chan struct{}
	stopOnce    sync.Once
}

func NewWorker(
	repo repositories.SessionRepository,
	bank QuestionBank,
	embedder Embedder,
	concurrency int,
) Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &worker{
		repo:        repo,
		bank:        bank,
		embedder:    embedder,
		jobQueue:    make(chan string, 100),
		concurrency: concurrency,
		stopChan:    make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting indexing worker with %d concurrent workers\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		log.Println("🛑 Stopping worker...")
		close(w.stopChan)
		w.wg.Wait()
		log.Println("✅ Worker stopped")
	})
}

// EnqueueJob implements Worker. It never blocks the caller; a full queue
// drops the job.
func (w *worker) EnqueueJob(sessionID string) {
	select {
	case <-w.stopChan:
		log.Printf("⚠️  Worker stopped, cannot enqueue session %s\n", sessionID)
		return
	default:
	}

	select {
	case w.jobQueue <- sessionID:
		log.Printf("📥 Session %s enqueued for indexing\n", sessionID)
	default:
		log.Printf("⚠️  Index queue full, dropping session %s\n", sessionID)
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Worker #%d stopped\n", workerID)
			return
		case <-ctx.Done():
			return
		case sessionID := <-w.jobQueue:
			if err := w.indexSession(ctx, sessionID); err != nil {
				log.Printf("❌ Worker #%d failed to index session %s: %v\n", workerID, sessionID, err)
			} else {
				log.Printf("✅ Worker #%d indexed session %s\n", workerID, sessionID)
			}
		}
	}
}

func (w *worker) indexSession(ctx context.Context, sessionID string) error {
	session, err := w.repo.FindByID(sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	for i, question := range session.Questions {
		embedding, err := w.embedder.GenerateEmbedding(ctx, question)
		if err != nil {
			return fmt.Errorf("failed to embed question %d: %w", i, err)
		}

		entry := BankEntry{
			Key:         fmt.Sprintf("%s:%d", sessionID, i),
			SourceID:    sessionID,
			DocType:     DocTypeGenerated,
			JobPosition: session.Intake.DesiredJob,
			Difficulty:  session.Intake.Difficulty,
			Text:        question,
		}
		if err := w.bank.Upsert(ctx, entry, embedding); err != nil {
			return fmt.Errorf("failed to upsert question %d: %w", i, err)
		}
	}

	return nil
}
