package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopsafety/quiz-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

func attemptAt(percentage float64, score, total int, at time.Time) *models.Attempt {
	return &models.Attempt{
		ID:               1,
		UserID:           7,
		TestID:           3,
		Score:            score,
		TotalQuestions:   total,
		Percentage:       percentage,
		Passed:           percentage >= PassThreshold,
		AttemptTimestamp: at,
	}
}

func TestResolveStatus(t *testing.T) {
	test := &models.Test{ID: 3, Name: "Table Saw Safety"}

	tests := []struct {
		name          string
		latest        *models.Attempt
		questionCount int
		wantStatus    AvailabilityStatus
		wantAvailable bool
		wantRemaining int
	}{
		{
			name:          "never attempted",
			latest:        nil,
			questionCount: 10,
			wantStatus:    StatusNotAttempted,
			wantAvailable: true,
		},
		{
			name:          "passed is terminal",
			latest:        attemptAt(100, 10, 10, testNow.Add(-30*24*time.Hour)),
			questionCount: 10,
			wantStatus:    StatusPassed,
			wantAvailable: true,
		},
		{
			name:          "exactly at threshold passes",
			latest:        attemptAt(95, 19, 20, testNow.Add(-time.Minute)),
			questionCount: 20,
			wantStatus:    StatusPassed,
			wantAvailable: true,
		},
		{
			name:          "just below threshold cools down",
			latest:        attemptAt(94.99, 19, 20, testNow.Add(-time.Minute)),
			questionCount: 20,
			wantStatus:    StatusCoolingDown,
			wantAvailable: false,
			wantRemaining: 4,
		},
		{
			name:          "failed immediately, full cooldown",
			latest:        attemptAt(75, 3, 4, testNow),
			questionCount: 4,
			wantStatus:    StatusCoolingDown,
			wantAvailable: false,
			wantRemaining: 5,
		},
		{
			name:          "partial minute rounds up",
			latest:        attemptAt(50, 2, 4, testNow.Add(-270*time.Second)),
			questionCount: 4,
			wantStatus:    StatusCoolingDown,
			wantAvailable: false,
			wantRemaining: 1,
		},
		{
			name:          "cooldown elapsed exactly",
			latest:        attemptAt(50, 2, 4, testNow.Add(-5*time.Minute)),
			questionCount: 4,
			wantStatus:    StatusAvailable,
			wantAvailable: true,
		},
		{
			name:          "long after cooldown",
			latest:        attemptAt(80, 8, 10, testNow.Add(-2*time.Hour)),
			questionCount: 10,
			wantStatus:    StatusAvailable,
			wantAvailable: true,
		},
		{
			name:          "attempt timestamp in the future clamps to full cooldown",
			latest:        attemptAt(60, 6, 10, testNow.Add(3*time.Minute)),
			questionCount: 10,
			wantStatus:    StatusCoolingDown,
			wantAvailable: false,
			wantRemaining: 5,
		},
		{
			name:          "zero questions is misconfigured",
			latest:        nil,
			questionCount: 0,
			wantStatus:    StatusMisconfigured,
			wantAvailable: false,
		},
		{
			name:          "zero questions with history still misconfigured",
			latest:        attemptAt(100, 5, 5, testNow.Add(-time.Hour)),
			questionCount: 0,
			wantStatus:    StatusMisconfigured,
			wantAvailable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveStatus(test, tt.latest, tt.questionCount, testNow)

			assert.Equal(t, test.ID, got.TestID)
			assert.Equal(t, test.Name, got.Name)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantAvailable, got.IsAvailable)
			assert.Equal(t, tt.wantRemaining, got.TimeoutRemaining)
		})
	}
}

func TestResolveStatus_IsPure(t *testing.T) {
	test := &models.Test{ID: 3, Name: "Table Saw Safety"}
	latest := attemptAt(75, 3, 4, testNow.Add(-2*time.Minute))

	first := ResolveStatus(test, latest, 4, testNow)
	second := ResolveStatus(test, latest, 4, testNow)

	assert.Equal(t, first, second)
	// Inputs are never mutated.
	assert.Equal(t, 75.0, latest.Percentage)
	assert.Equal(t, testNow.Add(-2*time.Minute), latest.AttemptTimestamp)
}

func TestResolveStatus_RecomputesMissingPercentage(t *testing.T) {
	test := &models.Test{ID: 3, Name: "Table Saw Safety"}
	latest := &models.Attempt{
		TestID:           3,
		Score:            19,
		TotalQuestions:   20,
		AttemptTimestamp: testNow.Add(-time.Minute),
	}

	got := ResolveStatus(test, latest, 20, testNow)

	require.NotNil(t, got.Percentage)
	assert.Equal(t, StatusPassed, got.Status)
	assert.True(t, got.Passed)
	assert.InDelta(t, 95.0, *got.Percentage, 0.001)
}

func TestGetAvailableTests(t *testing.T) {
	repo := NewMockRepository()
	svc := &availabilityService{
		repo:   repo,
		logger: testLogger(),
		now:    func() time.Time { return testNow },
	}

	userID := uint(7)
	tests := []*models.Test{
		{ID: 1, Name: "Table Saw Safety", Active: true},
		{ID: 2, Name: "Drill Press Safety", Active: true},
		{ID: 3, Name: "Empty Draft", Active: true},
	}
	attempts := []*models.Attempt{
		attemptWith(1, 100, 4, 4, testNow.Add(-time.Hour)),
		attemptWith(2, 75, 3, 4, testNow.Add(-2*time.Minute)),
	}

	repo.UserRepo.On("GetByID", mock.Anything, userID).Return(&models.User{ID: userID}, nil)
	repo.TestRepo.On("ListActive", mock.Anything).Return(tests, nil)
	repo.AttemptRepo.On("GetLatestByUser", mock.Anything, userID).Return(attempts, nil)
	repo.QuestionRepo.On("CountByTest", mock.Anything, uint(1)).Return(int64(4), nil)
	repo.QuestionRepo.On("CountByTest", mock.Anything, uint(2)).Return(int64(4), nil)
	repo.QuestionRepo.On("CountByTest", mock.Anything, uint(3)).Return(int64(0), nil)

	statuses, err := svc.GetAvailableTests(context.Background(), userID)

	require.NoError(t, err)
	require.Len(t, statuses, 3)

	assert.Equal(t, StatusPassed, statuses[0].Status)
	assert.True(t, statuses[0].Passed)

	assert.Equal(t, StatusCoolingDown, statuses[1].Status)
	assert.False(t, statuses[1].IsAvailable)
	assert.Equal(t, 3, statuses[1].TimeoutRemaining)

	assert.Equal(t, StatusMisconfigured, statuses[2].Status)
	assert.False(t, statuses[2].IsAvailable)

	// Read-only query: calling it again yields the same answer.
	again, err := svc.GetAvailableTests(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, statuses, again)
}

func TestGetAvailableTests_UnknownUser(t *testing.T) {
	repo := NewMockRepository()
	svc := &availabilityService{repo: repo, logger: testLogger(), now: func() time.Time { return testNow }}

	repo.UserRepo.On("GetByID", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.GetAvailableTests(context.Background(), uint(99))
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func attemptWith(testID uint, percentage float64, score, total int, at time.Time) *models.Attempt {
	a := attemptAt(percentage, score, total, at)
	a.TestID = testID
	return a
}
