package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Attempt is one graded submission of answers by a student for a test.
// Rows are append-only: an attempt is written once by the grading engine
// and never mutated afterwards.
type Attempt struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	UserID uint `json:"user_id" gorm:"not null;index:idx_results_user_test"`
	TestID uint `json:"test_id" gorm:"not null;index:idx_results_user_test"`

	// Server-computed grading outcome. TotalQuestions is the size of the
	// question set at grading time, so percentages stay auditable even
	// after admins edit the test.
	Score          int     `json:"score" gorm:"not null"`
	TotalQuestions int     `json:"total_questions" gorm:"not null"`
	Percentage     float64 `json:"percentage" gorm:"not null"`
	Passed         bool    `json:"passed" gorm:"not null;index"`

	Answers          datatypes.JSON `json:"answers" gorm:"type:jsonb"` // map[questionID]selected answer
	AttemptTimestamp time.Time      `json:"attempt_timestamp" gorm:"not null;index"`
	TimeSpent        *int           `json:"time_spent"` // Seconds

	CreatedAt time.Time `json:"created_at"`

	// Relations
	User            User             `json:"-" gorm:"foreignKey:UserID"`
	Test            Test             `json:"-" gorm:"foreignKey:TestID"`
	FailedQuestions []FailedQuestion `json:"failed_questions,omitempty" gorm:"foreignKey:AttemptID"`
}

// FailedQuestion records one incorrectly answered (or unanswered) question
// of an attempt, kept solely for the review screen. It is written in the
// same transaction as its owning attempt.
type FailedQuestion struct {
	ID             uint    `json:"id" gorm:"primaryKey"`
	AttemptID      uint    `json:"attempt_id" gorm:"column:user_test_result_id;not null;index"`
	QuestionID     uint    `json:"question_id" gorm:"not null;index"`
	SelectedAnswer *string `json:"selected_answer" gorm:"size:500"` // nil when the question was left unanswered

	// Relations
	Attempt  Attempt  `json:"-" gorm:"foreignKey:AttemptID"`
	Question Question `json:"-" gorm:"foreignKey:QuestionID"`
}

func (Attempt) TableName() string {
	return "user_test_results"
}

func (FailedQuestion) TableName() string {
	return "failed_questions"
}

// AnswerMap decodes the submitted answers as question id -> selected answer.
func (a *Attempt) AnswerMap() (map[uint]string, error) {
	answers := make(map[uint]string)
	if len(a.Answers) == 0 {
		return answers, nil
	}
	if err := json.Unmarshal(a.Answers, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}
