package models

import (
	"time"
)

// Intake is the initial form submission. Field names in JSON follow the
// intake documents written by the web client.
type Intake struct {
	DesiredJob    string    `gorm:"type:text" json:"desiredJob"`
	QuestionCount int       `gorm:"type:integer" json:"questionCount"`
	Difficulty    string    `gorm:"type:text" json:"difficulty"`
	Company       string    `gorm:"type:text" json:"company"`
	ResumePath    string    `gorm:"type:text" json:"resume_path"`
	SubmittedAt   time.Time `gorm:"type:timestamp" json:"submitted_at"`
}
