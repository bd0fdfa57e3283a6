package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	FirstName string `json:"first_name" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	LastName  string `json:"last_name" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	StudentID string `json:"student_id" gorm:"uniqueIndex;not null;size:50" validate:"required,min=1,max=50"`

	// Bcrypt hash of the 4-digit PIN. Never serialized.
	PINHash string `json:"-" gorm:"column:pin_hash;not null;size:100"`

	IsAdmin  bool  `json:"is_admin" gorm:"default:false"`
	CohortID *uint `json:"cohort_id" gorm:"index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Cohort   *Cohort   `json:"cohort,omitempty" gorm:"foreignKey:CohortID"`
	Attempts []Attempt `json:"-" gorm:"foreignKey:UserID"`
}

func (User) TableName() string {
	return "users"
}
