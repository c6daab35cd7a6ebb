package models

import (
	"time"

	"github.com/google/uuid"
)

type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "PENDING"
	SubmissionApproved SubmissionStatus = "APPROVED"
	SubmissionRejected SubmissionStatus = "REJECTED"
)

// AnswerSubmission for the answer_submissions table. Rows stay PENDING
// until an admin reviews them; review is a conditional update so two
// concurrent reviewers cannot both win.
type AnswerSubmission struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	GameNumber int
	Answer     string
	Status     SubmissionStatus
	ReviewedBy *string
	ReviewedAt *time.Time
	CreatedAt  time.Time
}
