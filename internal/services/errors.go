package services

import (
	"errors"

	apperrors "github.com/shopsafety/quiz-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")

	// Test / question errors
	ErrTestNotFound      = errors.New("test not found")
	ErrQuestionNotFound  = errors.New("question not found")
	ErrTestMisconfigured = errors.New("test has no questions and cannot be graded")
	ErrInvalidAnswerKey  = errors.New("correct answer must be one of the answer options")

	// Attempt errors
	ErrAttemptNotFound = errors.New("attempt not found")

	// User / auth errors
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateStudentID = errors.New("student id already registered")
	ErrInvalidCredentials = errors.New("invalid student id or PIN")

	// Cohort errors
	ErrCohortNotFound = errors.New("cohort not found")
	ErrCohortNotEmpty = errors.New("cohort still has enrolled students")
)

// Use the shared validation error types from the errors package.
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// ===== ERROR CLASSIFICATION =====

// IsNotFound checks if err represents a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrTestNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrAttemptNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrCohortNotFound)
}

// IsValidation checks if err represents rejected input.
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsConflict checks if err represents a state conflict such as a duplicate
// registration.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrDuplicateStudentID) ||
		errors.Is(err, ErrCohortNotEmpty)
}

// IsConfiguration checks if err represents bad reference data: the test
// exists but cannot be attempted or graded as stored.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrTestMisconfigured) ||
		errors.Is(err, ErrInvalidAnswerKey)
}
