package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/shopsafety/quiz-service/internal/models"
	"gorm.io/gorm"
)

// Repository aggregates the per-entity repositories behind one handle so
// services can run several of them inside a single transaction.
type Repository interface {
	Test() TestRepository
	Question() QuestionRepository
	Attempt() AttemptRepository
	User() UserRepository
	Cohort() CohortRepository

	// Begin returns a Repository whose operations run inside a new
	// transaction until Commit or Rollback is called on it.
	Begin(ctx context.Context) (Repository, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type TestRepository interface {
	Create(ctx context.Context, test *models.Test) error
	GetByID(ctx context.Context, id uint) (*models.Test, error)
	Update(ctx context.Context, test *models.Test) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters TestFilters) ([]*models.Test, error)
	ListActive(ctx context.Context) ([]*models.Test, error)
}

type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id uint) error
	GetByTest(ctx context.Context, testID uint) ([]*models.Question, error)
	CountByTest(ctx context.Context, testID uint) (int64, error)
}

type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.Attempt) error
	GetByID(ctx context.Context, id uint) (*models.Attempt, error)
	List(ctx context.Context, filters AttemptFilters) ([]*models.Attempt, int64, error)

	// GetLatestByUserAndTest returns the most recent attempt by timestamp,
	// ties broken by row id. Returns a not-found error when the student has
	// never attempted the test.
	GetLatestByUserAndTest(ctx context.Context, userID, testID uint) (*models.Attempt, error)

	// GetLatestByUser returns at most one attempt per test for the student,
	// each the most recent one.
	GetLatestByUser(ctx context.Context, userID uint) ([]*models.Attempt, error)

	CreateFailedQuestions(ctx context.Context, records []*models.FailedQuestion) error
	GetFailedQuestions(ctx context.Context, attemptID uint) ([]*FailedQuestionDetail, error)

	// ListScores returns the admin score report, newest attempts first.
	ListScores(ctx context.Context, filters AttemptFilters) ([]*ScoreRow, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByStudentID(ctx context.Context, studentID string) (*models.User, error)
	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
}

type CohortRepository interface {
	Create(ctx context.Context, cohort *models.Cohort) error
	GetByID(ctx context.Context, id uint) (*models.Cohort, error)
	List(ctx context.Context) ([]*models.Cohort, error)
	Update(ctx context.Context, cohort *models.Cohort) error
	Delete(ctx context.Context, id uint) error
}

// ===== SHARED FILTER STRUCTS =====

type TestFilters struct {
	Active    *bool  `json:"active"`
	CreatedBy *uint  `json:"created_by"`
	SortBy    string `json:"sort_by"`    // "display_order", "created_at", "name"
	SortOrder string `json:"sort_order"` // "asc", "desc"
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
}

type AttemptFilters struct {
	UserID   *uint      `json:"user_id"`
	TestID   *uint      `json:"test_id"`
	Passed   *bool      `json:"passed"`
	DateFrom *time.Time `json:"date_from"`
	DateTo   *time.Time `json:"date_to"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

type UserFilters struct {
	CohortID *uint  `json:"cohort_id"`
	IsAdmin  *bool  `json:"is_admin"`
	Search   string `json:"search"`
	Limit    int    `json:"limit"`
	Offset   int    `json:"offset"`
}

// ===== SHARED RESULT STRUCTS =====

// FailedQuestionDetail joins a failed-question record with its question text
// for the review screen.
type FailedQuestionDetail struct {
	QuestionID     uint    `json:"question_id"`
	QuestionText   string  `json:"question_text"`
	SelectedAnswer *string `json:"selected_answer"`
}

// ScoreRow is one row of the admin score report.
type ScoreRow struct {
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	TestName         string    `json:"test_name"`
	Score            int       `json:"score"`
	TotalQuestions   int       `json:"total_questions"`
	Percentage       float64   `json:"percentage"`
	Passed           bool      `json:"passed"`
	AttemptTimestamp time.Time `json:"attempt_timestamp"`
}

// IsNotFoundError reports whether err represents a missing row.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports whether err represents a unique-constraint violation.
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
