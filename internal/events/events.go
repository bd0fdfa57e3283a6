package events

import (
	"fmt"
	"time"

	"github.com/shopsafety/quiz-service/internal/models"
)

type EventType string

const (
	EventAttemptGraded EventType = "attempt.graded"
)

// AttemptGradedEvent is emitted after a submission commits, for downstream
// consumers such as progress dashboards and instructor notifications.
type AttemptGradedEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`

	AttemptID  uint    `json:"attempt_id"`
	UserID     uint    `json:"user_id"`
	TestID     uint    `json:"test_id"`
	Score      int     `json:"score"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Passed     bool    `json:"passed"`
}

func NewAttemptGradedEvent(attempt *models.Attempt) *AttemptGradedEvent {
	return &AttemptGradedEvent{
		ID:         fmt.Sprintf("attempt-%d", attempt.ID),
		Type:       EventAttemptGraded,
		Source:     "quiz-service",
		Version:    "1.0",
		Timestamp:  time.Now().UTC(),
		AttemptID:  attempt.ID,
		UserID:     attempt.UserID,
		TestID:     attempt.TestID,
		Score:      attempt.Score,
		Total:      attempt.TotalQuestions,
		Percentage: attempt.Percentage,
		Passed:     attempt.Passed,
	}
}
