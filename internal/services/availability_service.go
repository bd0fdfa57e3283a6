package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopsafety/quiz-service/internal/repositories"
	"github.com/shopsafety/quiz-service/internal/utils"
)

type availabilityService struct {
	repo   repositories.Repository
	logger utils.Logger
	now    func() time.Time
}

func NewAvailabilityService(repo repositories.Repository, logger utils.Logger) AvailabilityService {
	return &availabilityService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// GetAvailableTests returns one status per active test in catalog display
// order, computed from the student's latest attempt per test.
func (s *availabilityService) GetAvailableTests(ctx context.Context, userID uint) ([]*TestAvailability, error) {
	if _, err := s.repo.User().GetByID(ctx, userID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	tests, err := s.repo.Test().ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active tests: %w", err)
	}

	latestAttempts, err := s.repo.Attempt().GetLatestByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest attempts: %w", err)
	}
	latestByTest := make(map[uint]int, len(latestAttempts))
	for i, attempt := range latestAttempts {
		latestByTest[attempt.TestID] = i
	}

	now := s.now()
	statuses := make([]*TestAvailability, 0, len(tests))
	for _, test := range tests {
		count, err := s.repo.Question().CountByTest(ctx, test.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count questions for test %d: %w", test.ID, err)
		}

		var status TestAvailability
		if i, ok := latestByTest[test.ID]; ok {
			status = ResolveStatus(test, latestAttempts[i], int(count), now)
		} else {
			status = ResolveStatus(test, nil, int(count), now)
		}

		if status.Status == StatusMisconfigured {
			s.logger.Warn("Test has no questions, reporting as misconfigured",
				"test_id", test.ID,
				"test_name", test.Name)
		}

		statuses = append(statuses, &status)
	}

	return statuses, nil
}
