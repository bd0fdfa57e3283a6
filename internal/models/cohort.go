package models

import "time"

// Cohort is an administrative grouping of students (a shop class).
type Cohort struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"not null;uniqueIndex;size:100" validate:"required,min=1,max=100"`
	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Students []User `json:"students,omitempty" gorm:"foreignKey:CohortID"`
}

func (Cohort) TableName() string {
	return "cohorts"
}
