package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/shopsafety/quiz-service/internal/events"
	"github.com/shopsafety/quiz-service/internal/models"
	"github.com/shopsafety/quiz-service/internal/repositories"
	"github.com/shopsafety/quiz-service/internal/utils"
	"github.com/shopsafety/quiz-service/internal/validator"
)

type gradingService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	now       func() time.Time
}

func NewGradingService(
	repo repositories.Repository,
	logger utils.Logger,
	validator *validator.Validator,
	publisher events.EventPublisher,
) GradingService {
	return &gradingService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		now:       time.Now,
	}
}

// SubmitAttempt grades a submission against the authoritative answer key and
// persists the attempt together with its failed-question records in one
// transaction. The client-supplied score is never used for grading.
func (s *gradingService) SubmitAttempt(ctx context.Context, req *SubmitTestRequest) (*SubmitTestResult, error) {
	s.logger.Info("Submitting test attempt",
		"test_id", req.TestID,
		"user_id", req.UserID,
		"answers_count", len(req.Answers))

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	if _, err := s.repo.Test().GetByID(ctx, req.TestID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	if _, err := s.repo.User().GetByID(ctx, req.UserID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	questions, err := s.repo.Question().GetByTest(ctx, req.TestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load question set: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrTestMisconfigured
	}

	// Grade against the answer key. Unanswered questions count as incorrect;
	// answer-map entries for unknown question ids are ignored.
	total := len(questions)
	score := 0
	var failed []*models.FailedQuestion
	for _, question := range questions {
		selected, answered := req.Answers[question.ID]
		if answered && selected == question.CorrectAnswer {
			score++
			continue
		}

		record := &models.FailedQuestion{QuestionID: question.ID}
		if answered {
			answer := selected
			record.SelectedAnswer = &answer
		}
		failed = append(failed, record)
	}

	percentage := math.Round(float64(score)/float64(total)*100*100) / 100
	passed := percentage >= PassThreshold

	if req.ClientScore != nil && *req.ClientScore != score {
		s.logger.Warn("Client-reported score disagrees with server grading",
			"test_id", req.TestID,
			"user_id", req.UserID,
			"client_score", *req.ClientScore,
			"server_score", score)
	}

	answersJSON, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}

	attempt := &models.Attempt{
		UserID:           req.UserID,
		TestID:           req.TestID,
		Score:            score,
		TotalQuestions:   total,
		Percentage:       percentage,
		Passed:           passed,
		Answers:          answersJSON,
		AttemptTimestamp: s.now().UTC(),
		TimeSpent:        req.TimeSpent,
	}

	// The attempt and its failed-question records commit together or not at
	// all: an attempt must never exist without its review detail.
	txRepo, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := txRepo.Rollback(ctx); rbErr != nil {
				s.logger.Error("Failed to roll back submission", "error", rbErr)
			}
		}
	}()

	if err = txRepo.Attempt().Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}
	for _, record := range failed {
		record.AttemptID = attempt.ID
	}
	if err = txRepo.Attempt().CreateFailedQuestions(ctx, failed); err != nil {
		return nil, fmt.Errorf("failed to create failed-question records: %w", err)
	}
	if err = txRepo.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit submission: %w", err)
	}

	s.logger.Info("Test attempt graded",
		"attempt_id", attempt.ID,
		"test_id", req.TestID,
		"user_id", req.UserID,
		"score", score,
		"total", total,
		"percentage", percentage,
		"passed", passed)

	s.publishGraded(attempt)

	return &SubmitTestResult{
		Score:      score,
		Total:      total,
		Percentage: percentage,
		Passed:     passed,
	}, nil
}

// GetFailedQuestionReview returns the failed questions of the student's most
// recent attempt at a test.
func (s *gradingService) GetFailedQuestionReview(ctx context.Context, testID, userID uint) ([]*repositories.FailedQuestionDetail, error) {
	latest, err := s.repo.Attempt().GetLatestByUserAndTest(ctx, userID, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get latest attempt: %w", err)
	}

	details, err := s.repo.Attempt().GetFailedQuestions(ctx, latest.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get failed questions: %w", err)
	}
	return details, nil
}

// publishGraded emits the attempt-graded event best effort; submission
// success never depends on the broker.
func (s *gradingService) publishGraded(attempt *models.Attempt) {
	if s.publisher == nil {
		return
	}
	event := events.NewAttemptGradedEvent(attempt)
	go func() {
		if err := s.publisher.PublishAttemptGraded(context.Background(), event); err != nil {
			s.logger.Error("Failed to publish attempt-graded event",
				"attempt_id", attempt.ID,
				"error", err)
		}
	}()
}
