package services

import (
	"context"

	"github.com/shopsafety/quiz-service/internal/events"
	"github.com/shopsafety/quiz-service/internal/models"
	"github.com/shopsafety/quiz-service/internal/repositories"
	"github.com/shopsafety/quiz-service/internal/utils"
	"github.com/shopsafety/quiz-service/internal/validator"
)

// ===== SERVICE INTERFACES =====

// AvailabilityService computes per-test availability for a student. It is
// read-only: the same catalog and attempt history always produce the same
// statuses.
type AvailabilityService interface {
	GetAvailableTests(ctx context.Context, userID uint) ([]*TestAvailability, error)
}

// GradingService grades submitted attempts and persists the outcome.
type GradingService interface {
	SubmitAttempt(ctx context.Context, req *SubmitTestRequest) (*SubmitTestResult, error)
	GetFailedQuestionReview(ctx context.Context, testID, userID uint) ([]*repositories.FailedQuestionDetail, error)
}

// TestService manages the test catalog and serves question sets to students.
type TestService interface {
	GetQuestionsForTest(ctx context.Context, testID uint) ([]*QuestionResponse, error)

	ListTests(ctx context.Context, filters repositories.TestFilters) ([]*models.Test, error)
	CreateTest(ctx context.Context, req *CreateTestRequest, createdBy uint) (*models.Test, error)
	UpdateTest(ctx context.Context, id uint, req *UpdateTestRequest) (*models.Test, error)
	DeleteTest(ctx context.Context, id uint) error

	ListQuestions(ctx context.Context, testID uint) ([]*models.Question, error)
	CreateQuestion(ctx context.Context, testID uint, req *QuestionRequest) (*models.Question, error)
	UpdateQuestion(ctx context.Context, id uint, req *QuestionRequest) (*models.Question, error)
	DeleteQuestion(ctx context.Context, id uint) error
}

// UserService handles registration, login and user administration.
type UserService interface {
	Register(ctx context.Context, req *RegisterRequest) (*UserProfile, error)
	Login(ctx context.Context, req *LoginRequest) (*LoginResult, error)
	GetByID(ctx context.Context, id uint) (*UserProfile, error)
	List(ctx context.Context, filters repositories.UserFilters) ([]*UserProfile, int64, error)
	Delete(ctx context.Context, id uint) error
}

// CohortService manages shop-class groupings.
type CohortService interface {
	List(ctx context.Context) ([]*models.Cohort, error)
	Create(ctx context.Context, req *CohortRequest) (*models.Cohort, error)
	Update(ctx context.Context, id uint, req *CohortRequest) (*models.Cohort, error)
	Delete(ctx context.Context, id uint) error
}

// ReportingService produces the admin score report.
type ReportingService interface {
	ListScores(ctx context.Context, filters repositories.AttemptFilters) ([]*repositories.ScoreRow, error)
	ExportScoresXLSX(ctx context.Context, filters repositories.AttemptFilters) ([]byte, error)
}

// ===== REQUEST / RESPONSE STRUCTS =====

type SubmitTestRequest struct {
	UserID  uint            `json:"user_id" validate:"required"`
	TestID  uint            `json:"-"`
	Answers map[uint]string `json:"answers" validate:"required"`

	// ClientScore is what the client computed for itself. It is diagnostic
	// only; grading never trusts it.
	ClientScore *int `json:"score"`
	TimeSpent   *int `json:"time_spent" validate:"omitempty,min=0"`
}

type SubmitTestResult struct {
	Score      int     `json:"score"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Passed     bool    `json:"passed"`
}

// QuestionResponse is the student-facing question shape. The correct answer
// is included because the original client grades locally for instant
// feedback; the server re-grades authoritatively on submit.
type QuestionResponse struct {
	ID           uint     `json:"id"`
	QuestionText string   `json:"question_text"`
	Answers      []string `json:"answers"`
	CorrectAnswer string  `json:"correct_answer"`
}

type CreateTestRequest struct {
	Name         string  `json:"name" validate:"required,min=1,max=200"`
	Description  *string `json:"description" validate:"omitempty,max=1000"`
	DisplayOrder int     `json:"display_order"`
	TimeLimit    int     `json:"time_limit" validate:"omitempty,min=1,max=300"`
	MaxRetries   int     `json:"max_retries" validate:"omitempty,min=0,max=20"`
	Active       *bool   `json:"active"`
}

type UpdateTestRequest = CreateTestRequest

type QuestionRequest struct {
	QuestionText  string   `json:"question_text" validate:"required,min=1"`
	Answers       []string `json:"answers" validate:"required,min=2,dive,required"`
	CorrectAnswer string   `json:"correct_answer" validate:"required"`
}

type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required,min=1,max=100"`
	LastName  string `json:"last_name" validate:"required,min=1,max=100"`
	StudentID string `json:"student_id" validate:"required,min=1,max=50"`
	PIN       string `json:"pin" validate:"required,pin"`
	CohortID  *uint  `json:"cohort_id"`
}

type LoginRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	PIN       string `json:"pin" validate:"required"`
}

type UserProfile struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	StudentID string `json:"student_id"`
	IsAdmin   bool   `json:"is_admin"`
	CohortID  *uint  `json:"cohort_id,omitempty"`
}

type LoginResult struct {
	Token string       `json:"token"`
	User  *UserProfile `json:"user"`
}

type CohortRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

// ===== SERVICE MANAGER =====

// Manager wires every service over one repository so handlers have a single
// dependency.
type Manager struct {
	availability AvailabilityService
	grading      GradingService
	tests        TestService
	users        UserService
	cohorts      CohortService
	reporting    ReportingService
}

type ManagerConfig struct {
	Repo      repositories.Repository
	Logger    utils.Logger
	Validator *validator.Validator
	Publisher events.EventPublisher
	Catalog   CatalogCache
	JWTSecret string
}

func NewManager(cfg ManagerConfig) *Manager {
	return &Manager{
		availability: NewAvailabilityService(cfg.Repo, cfg.Logger),
		grading:      NewGradingService(cfg.Repo, cfg.Logger, cfg.Validator, cfg.Publisher),
		tests:        NewTestService(cfg.Repo, cfg.Logger, cfg.Validator, cfg.Catalog),
		users:        NewUserService(cfg.Repo, cfg.Logger, cfg.Validator, cfg.JWTSecret),
		cohorts:      NewCohortService(cfg.Repo, cfg.Logger, cfg.Validator),
		reporting:    NewReportingService(cfg.Repo, cfg.Logger),
	}
}

func (m *Manager) Availability() AvailabilityService { return m.availability }
func (m *Manager) Grading() GradingService           { return m.grading }
func (m *Manager) Tests() TestService                { return m.tests }
func (m *Manager) Users() UserService                { return m.users }
func (m *Manager) Cohorts() CohortService            { return m.cohorts }
func (m *Manager) Reporting() ReportingService       { return m.reporting }
