package models

import (
	"time"
)

type SessionState string

const (
	StateCreated          SessionState = "created"
	StateQuestionsPending SessionState = "questions_pending"
	StateInterviewing     SessionState = "interviewing"
	StateAwaitingFeedback SessionState = "awaiting_feedback"
	StateComplete         SessionState = "complete"
)

var stateOrder = map[SessionState]int{
	StateCreated:          0,
	StateQuestionsPending: 1,
	StateInterviewing:     2,
	StateAwaitingFeedback: 3,
	StateComplete:         4,
}

// Before reports whether s comes strictly earlier than other in the lifecycle.
func (s SessionState) Before(other SessionState) bool {
	return stateOrder[s] < stateOrder[other]
}

// Valid reports whether s is a known lifecycle state.
func (s SessionState) Valid() bool {
	_, ok := stateOrder[s]
	return ok
}

type Speaker string

const (
	SpeakerInterviewer Speaker = "interviewer"
	SpeakerCandidate   Speaker = "candidate"
)

type Turn struct {
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type Feedback struct {
	Communication int    `json:"communication"`
	Content       int    `json:"content"`
	Confidence    int    `json:"confidence"`
	Feedback      string `json:"feedback"`
}

// Session is one interview engagement. Intake is immutable after creation;
// every other artifact is attached later under the same ID.
type Session struct {
	ID           string       `gorm:"type:text;primaryKey" json:"id"`
	Intake       Intake       `gorm:"embedded" json:"intake"`
	ResumeText   string       `gorm:"type:text" json:"resume_text,omitempty"`
	State        SessionState `gorm:"type:text;not null;default:'created'" json:"state"`
	Questions    []string     `gorm:"serializer:json" json:"questions,omitempty"`
	Turns        []Turn       `gorm:"serializer:json" json:"turns,omitempty"`
	Conversation []byte       `gorm:"type:bytea" json:"-"`
	Feedback     *Feedback    `gorm:"serializer:json" json:"feedback,omitempty"`
	CreatedAt    time.Time    `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Session) TableName() string {
	return "interview_sessions"
}

// HasTranscript reports whether a finalized transcript has been stored.
func (s *Session) HasTranscript() bool {
	return len(s.Conversation) > 0
}
