package repositories

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/mock-interviewer/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already exists")
)

// SessionRepository persists sessions and their attached artifacts.
// Methods that attach an artifact also move the session to the state that
// artifact implies, in the same write.
type SessionRepository interface {
	Create(session *models.Session) error
	FindByID(id string) (*models.Session, error)
	UpdateState(id string, state models.SessionState) error
	SaveResumeText(id string, text string) error
	SaveQuestions(id string, questions []string) error
	AppendTurns(id string, turns ...models.Turn) error
	SaveTranscript(id string, conversation []byte) error
	SaveFeedback(id string, feedback *models.Feedback) error
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(session *models.Session) error {
	var count int64
	if err := r.db.Model(&models.Session{}).Where("id = ?", session.ID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}
	if count > 0 {
		return ErrSessionExists
	}

	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *sessionRepository) FindByID(id string) (*models.Session, error) {
	var session models.Session
	if err := r.db.Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return &session, nil
}

func (r *sessionRepository) UpdateState(id string, state models.SessionState) error {
	return r.update(id, &models.Session{State: state}, "state")
}

func (r *sessionRepository) SaveResumeText(id string, text string) error {
	return r.update(id, &models.Session{ResumeText: text}, "resume_text")
}

func (r *sessionRepository) SaveQuestions(id string, questions []string) error {
	return r.update(id, &models.Session{
		Questions: questions,
		State:     models.StateInterviewing,
	}, "questions", "state")
}

func (r *sessionRepository) AppendTurns(id string, turns ...models.Turn) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var session models.Session
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&session).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("failed to lock session: %w", err)
		}

		session.Turns = append(session.Turns, turns...)
		result := tx.Model(&models.Session{ID: id}).
			Select("turns", "updated_at").
			Updates(&models.Session{Turns: session.Turns, UpdatedAt: time.Now()})
		if result.Error != nil {
			return fmt.Errorf("failed to append turns: %w", result.Error)
		}
		return nil
	})
}

func (r *sessionRepository) SaveTranscript(id string, conversation []byte) error {
	return r.update(id, &models.Session{
		Conversation: conversation,
		State:        models.StateAwaitingFeedback,
	}, "conversation", "state")
}

func (r *sessionRepository) SaveFeedback(id string, feedback *models.Feedback) error {
	return r.update(id, &models.Session{
		Feedback: feedback,
		State:    models.StateComplete,
	}, "feedback", "state")
}

func (r *sessionRepository) update(id string, values *models.Session, columns ...string) error {
	values.UpdatedAt = time.Now()
	result := r.db.Model(&models.Session{ID: id}).
		Select(append(columns, "updated_at")).
		Updates(values)

	if result.Error != nil {
		return fmt.Errorf("failed to update session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}
