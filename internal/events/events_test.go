package events

import (
	"testing"

	"github.com/shopsafety/quiz-service/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestNewAttemptGradedEvent(t *testing.T) {
	attempt := &models.Attempt{
		ID:             42,
		UserID:         7,
		TestID:         3,
		Score:          3,
		TotalQuestions: 4,
		Percentage:     75.0,
		Passed:         false,
	}

	event := NewAttemptGradedEvent(attempt)

	assert.Equal(t, "attempt-42", event.ID)
	assert.Equal(t, EventAttemptGraded, event.Type)
	assert.Equal(t, "quiz-service", event.Source)
	assert.Equal(t, uint(42), event.AttemptID)
	assert.Equal(t, uint(7), event.UserID)
	assert.Equal(t, uint(3), event.TestID)
	assert.Equal(t, 3, event.Score)
	assert.Equal(t, 4, event.Total)
	assert.Equal(t, 75.0, event.Percentage)
	assert.False(t, event.Passed)
	assert.False(t, event.Timestamp.IsZero())
}
