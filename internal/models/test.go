package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Test struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	Name         string  `json:"name" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description  *string `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	DisplayOrder int     `json:"display_order" gorm:"default:0;index"`
	TimeLimit    int     `json:"time_limit" gorm:"default:30" validate:"omitempty,min=1,max=300"` // Minutes
	MaxRetries   int     `json:"max_retries" gorm:"default:0" validate:"omitempty,min=0,max=20"`  // 0 = unlimited
	Active       bool    `json:"active" gorm:"default:true;index"`

	// Metadata
	CreatedBy uint           `json:"created_by" gorm:"index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:TestID"`

	// Computed fields (not stored)
	QuestionsCount int `json:"questions_count,omitempty" gorm:"-"`
}

type Question struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	TestID       uint           `json:"test_id" gorm:"not null;index"`
	QuestionText string         `json:"question_text" gorm:"not null;type:text" validate:"required,min=1"`
	Answers      datatypes.JSON `json:"answers" gorm:"type:jsonb;not null"` // []string of answer options
	CorrectAnswer string        `json:"correct_answer" gorm:"not null;size:500" validate:"required"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Test Test `json:"-" gorm:"foreignKey:TestID"`
}

func (Test) TableName() string {
	return "tests"
}

func (Question) TableName() string {
	return "questions"
}

// AnswerOptions decodes the stored JSONB answer-option array.
func (q *Question) AnswerOptions() ([]string, error) {
	var options []string
	if len(q.Answers) == 0 {
		return options, nil
	}
	if err := json.Unmarshal(q.Answers, &options); err != nil {
		return nil, err
	}
	return options, nil
}
