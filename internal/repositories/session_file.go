package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"alfredoptarigan/mock-interviewer/internal/models"
)

// Storage areas under the base path. Every document is named by session ID.
const (
	DirData        = "data"
	DirResumes     = "resumes"
	DirQuestions   = "questions"
	DirTranscripts = "transcripts"
	DirFeedback    = "feedback"
	DirSessions    = "sessions"
)

type sessionMeta struct {
	ID         string              `json:"id"`
	State      models.SessionState `json:"state"`
	ResumeText string              `json:"resume_text,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

type fileSessionRepository struct {
	basePath string
	mu       sync.Mutex
}

// NewFileSessionRepository stores each artifact as a JSON document under basePath.
func NewFileSessionRepository(basePath string) (SessionRepository, error) {
	for _, dir := range []string{DirData, DirResumes, DirQuestions, DirTranscripts, DirFeedback, DirSessions} {
		if err := os.MkdirAll(filepath.Join(basePath, dir), 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s directory: %w", dir, err)
		}
	}

	return &fileSessionRepository{basePath: basePath}, nil
}

func (r *fileSessionRepository) Create(session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(session.Intake, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal intake: %w", err)
	}

	f, err := os.OpenFile(r.path(DirData, session.ID+".json"), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return ErrSessionExists
		}
		return fmt.Errorf("failed to create intake file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write intake file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close intake file: %w", err)
	}

	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	return r.writeMeta(&sessionMeta{
		ID:         session.ID,
		State:      session.State,
		ResumeText: session.ResumeText,
		CreatedAt:  session.CreatedAt,
		UpdatedAt:  session.UpdatedAt,
	})
}

func (r *fileSessionRepository) FindByID(id string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load(id)
}

func (r *fileSessionRepository) UpdateState(id string, state models.SessionState) error {
	return r.mutateMeta(id, func(meta *sessionMeta) {
		meta.State = state
	})
}

func (r *fileSessionRepository) SaveResumeText(id string, text string) error {
	return r.mutateMeta(id, func(meta *sessionMeta) {
		meta.ResumeText = text
	})
}

func (r *fileSessionRepository) SaveQuestions(id string, questions []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	meta, err := r.readMeta(id)
	if err != nil {
		return err
	}
	if err := r.writeJSON(r.path(DirQuestions, id+".json"), questions); err != nil {
		return fmt.Errorf("failed to save questions: %w", err)
	}

	meta.State = models.StateInterviewing
	meta.UpdatedAt = time.Now()
	return r.writeMeta(meta)
}

func (r *fileSessionRepository) AppendTurns(id string, turns ...models.Turn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	meta, err := r.readMeta(id)
	if err != nil {
		return err
	}

	var existing []models.Turn
	if err := r.readJSON(r.path(DirTranscripts, id+".turns.json"), &existing); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read turns: %w", err)
	}

	existing = append(existing, turns...)
	if err := r.writeJSON(r.path(DirTranscripts, id+".turns.json"), existing); err != nil {
		return fmt.Errorf("failed to append turns: %w", err)
	}

	meta.UpdatedAt = time.Now()
	return r.writeMeta(meta)
}

func (r *fileSessionRepository) SaveTranscript(id string, conversation []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	meta, err := r.readMeta(id)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(r.path(DirTranscripts, id+".json"), conversation); err != nil {
		return fmt.Errorf("failed to save transcript: %w", err)
	}

	meta.State = models.StateAwaitingFeedback
	meta.UpdatedAt = time.Now()
	return r.writeMeta(meta)
}

func (r *fileSessionRepository) SaveFeedback(id string, feedback *models.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	meta, err := r.readMeta(id)
	if err != nil {
		return err
	}
	if err := r.writeJSON(r.path(DirFeedback, id+".json"), feedback); err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}

	meta.State = models.StateComplete
	meta.UpdatedAt = time.Now()
	return r.writeMeta(meta)
}

func (r *fileSessionRepository) load(id string) (*models.Session, error) {
	meta, err := r.readMeta(id)
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		ID:         meta.ID,
		State:      meta.State,
		ResumeText: meta.ResumeText,
		CreatedAt:  meta.CreatedAt,
		UpdatedAt:  meta.UpdatedAt,
	}

	if err := r.readJSON(r.path(DirData, id+".json"), &session.Intake); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read intake: %w", err)
	}

	if err := r.readJSON(r.path(DirQuestions, id+".json"), &session.Questions); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read questions: %w", err)
	}
	if err := r.readJSON(r.path(DirTranscripts, id+".turns.json"), &session.Turns); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read turns: %w", err)
	}

	conversation, err := os.ReadFile(r.path(DirTranscripts, id+".json"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}
	session.Conversation = conversation

	var feedback models.Feedback
	if err := r.readJSON(r.path(DirFeedback, id+".json"), &feedback); err == nil {
		session.Feedback = &feedback
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read feedback: %w", err)
	}

	return session, nil
}

func (r *fileSessionRepository) mutateMeta(id string, fn func(meta *sessionMeta)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	meta, err := r.readMeta(id)
	if err != nil {
		return err
	}
	fn(meta)
	meta.UpdatedAt = time.Now()
	return r.writeMeta(meta)
}

func (r *fileSessionRepository) readMeta(id string) (*sessionMeta, error) {
	var meta sessionMeta
	if err := r.readJSON(r.path(DirSessions, id+".json"), &meta); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session metadata: %w", err)
	}
	if !meta.State.Valid() {
		return nil, fmt.Errorf("session %s has unknown state %q", id, meta.State)
	}
	return &meta, nil
}

func (r *fileSessionRepository) writeMeta(meta *sessionMeta) error {
	if err := r.writeJSON(r.path(DirSessions, meta.ID+".json"), meta); err != nil {
		return fmt.Errorf("failed to write session metadata: %w", err)
	}
	return nil
}

func (r *fileSessionRepository) path(dir, name string) string {
	return filepath.Join(r.basePath, dir, name)
}

func (r *fileSessionRepository) readJSON(path string, target interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

func (r *fileSessionRepository) writeJSON(path string, value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
