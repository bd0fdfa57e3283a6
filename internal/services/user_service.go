package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/shopsafety/quiz-service/internal/models"
	"github.com/shopsafety/quiz-service/internal/repositories"
	"github.com/shopsafety/quiz-service/internal/utils"
	"github.com/shopsafety/quiz-service/internal/validator"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 12 * time.Hour

type userService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *validator.Validator
	jwtSecret []byte
}

func NewUserService(
	repo repositories.Repository,
	logger utils.Logger,
	validator *validator.Validator,
	jwtSecret string,
) UserService {
	return &userService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		jwtSecret: []byte(jwtSecret),
	}
}

// Claims carried by session tokens.
type SessionClaims struct {
	UserID  uint `json:"user_id"`
	IsAdmin bool `json:"is_admin"`
	jwt.RegisteredClaims
}

// Register creates a student account. PINs are stored as bcrypt hashes only.
func (s *userService) Register(ctx context.Context, req *RegisterRequest) (*UserProfile, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	if req.CohortID != nil {
		if _, err := s.repo.Cohort().GetByID(ctx, *req.CohortID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrCohortNotFound
			}
			return nil, fmt.Errorf("failed to get cohort: %w", err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash PIN: %w", err)
	}

	user := &models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		StudentID: req.StudentID,
		PINHash:   string(hash),
		CohortID:  req.CohortID,
	}
	if err := s.repo.User().Create(ctx, user); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrDuplicateStudentID
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("Student registered", "user_id", user.ID, "student_id", user.StudentID)
	return profileOf(user), nil
}

// Login verifies the student-id/PIN pair and issues a session token. The
// same error is returned for an unknown student id and a wrong PIN.
func (s *userService) Login(ctx context.Context, req *LoginRequest) (*LoginResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	user, err := s.repo.User().GetByStudentID(ctx, req.StudentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PINHash), []byte(req.PIN)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	claims := SessionClaims{
		UserID:  user.ID,
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.StudentID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &LoginResult{Token: token, User: profileOf(user)}, nil
}

func (s *userService) GetByID(ctx context.Context, id uint) (*UserProfile, error) {
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return profileOf(user), nil
}

func (s *userService) List(ctx context.Context, filters repositories.UserFilters) ([]*UserProfile, int64, error) {
	users, total, err := s.repo.User().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	profiles := make([]*UserProfile, len(users))
	for i, user := range users {
		profiles[i] = profileOf(user)
	}
	return profiles, total, nil
}

func (s *userService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.User().GetByID(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	if err := s.repo.User().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func profileOf(user *models.User) *UserProfile {
	return &UserProfile{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		StudentID: user.StudentID,
		IsAdmin:   user.IsAdmin,
		CohortID:  user.CohortID,
	}
}
