package services

import (
	"math"
	"time"

	"github.com/shopsafety/quiz-service/internal/models"
)

// Retake policy constants. An attempt at or above PassThreshold is terminal;
// anything below it starts the cooldown window.
const (
	PassThreshold   = 95.0
	CooldownMinutes = 5
)

type AvailabilityStatus string

const (
	StatusNotAttempted  AvailabilityStatus = "not_attempted"
	StatusPassed        AvailabilityStatus = "passed"
	StatusCoolingDown   AvailabilityStatus = "cooling_down"
	StatusAvailable     AvailabilityStatus = "available"
	StatusMisconfigured AvailabilityStatus = "misconfigured"
)

// TestAvailability is the per-test status surfaced to the client. It is
// derived on every query and never stored.
type TestAvailability struct {
	TestID           uint               `json:"id"`
	Name             string             `json:"name"`
	Status           AvailabilityStatus `json:"status"`
	Score            *int               `json:"score"`
	Percentage       *float64           `json:"percentage"`
	Passed           bool               `json:"passed"`
	IsAvailable      bool               `json:"isAvailable"`
	TimeoutRemaining int                `json:"timeoutRemaining"` // Minutes, rounded up
}

// ResolveStatus computes the availability of one test for one student from
// the student's most recent attempt (nil when never attempted). It is a pure
// function of its arguments; now must come from the same clock that stamped
// the attempt.
func ResolveStatus(test *models.Test, latest *models.Attempt, questionCount int, now time.Time) TestAvailability {
	status := TestAvailability{
		TestID:      test.ID,
		Name:        test.Name,
		Status:      StatusNotAttempted,
		IsAvailable: true,
	}

	// A test with no questions cannot be attempted or graded. Surfaced as
	// misconfigured rather than crashing on a zero total.
	if questionCount == 0 {
		status.Status = StatusMisconfigured
		status.IsAvailable = false
		return status
	}

	if latest == nil {
		return status
	}

	score := latest.Score
	pct := attemptPercentage(latest)
	status.Score = &score
	status.Percentage = &pct

	if pct >= PassThreshold {
		status.Status = StatusPassed
		status.Passed = true
		status.IsAvailable = true
		return status
	}

	elapsed := now.Sub(latest.AttemptTimestamp)
	if elapsed < 0 {
		elapsed = 0 // clamp clock skew
	}

	remaining := CooldownMinutes*time.Minute - elapsed
	if remaining <= 0 {
		status.Status = StatusAvailable
		return status
	}

	status.Status = StatusCoolingDown
	status.IsAvailable = false
	status.TimeoutRemaining = int(math.Ceil(remaining.Minutes()))
	return status
}

// attemptPercentage prefers the stored percentage and falls back to
// recomputing from the raw score and the question count snapshotted at
// attempt time.
func attemptPercentage(a *models.Attempt) float64 {
	if a.Percentage > 0 || a.Score == 0 {
		return a.Percentage
	}
	if a.TotalQuestions == 0 {
		return 0
	}
	return float64(a.Score) / float64(a.TotalQuestions) * 100
}
