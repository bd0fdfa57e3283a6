package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/shopsafety/quiz-service/internal/models"
	"github.com/shopsafety/quiz-service/internal/repositories"
	"github.com/shopsafety/quiz-service/internal/utils"
	"github.com/shopsafety/quiz-service/internal/validator"
)

// CatalogCache caches the active test catalog between admin edits.
type CatalogCache interface {
	GetTests(ctx context.Context) ([]*models.Test, bool)
	SetTests(ctx context.Context, tests []*models.Test)
	Invalidate(ctx context.Context)
}

type testService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *validator.Validator
	catalog   CatalogCache
}

func NewTestService(
	repo repositories.Repository,
	logger utils.Logger,
	validator *validator.Validator,
	catalog CatalogCache,
) TestService {
	return &testService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		catalog:   catalog,
	}
}

// GetQuestionsForTest serves the question set for taking a test, with the
// question order and each question's answer options shuffled.
func (s *testService) GetQuestionsForTest(ctx context.Context, testID uint) ([]*QuestionResponse, error) {
	if _, err := s.repo.Test().GetByID(ctx, testID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	questions, err := s.repo.Question().GetByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	responses := make([]*QuestionResponse, 0, len(questions))
	for _, question := range questions {
		options, err := question.AnswerOptions()
		if err != nil {
			s.logger.Error("Skipping question with malformed answer options",
				"question_id", question.ID,
				"error", err)
			continue
		}
		rand.Shuffle(len(options), func(i, j int) {
			options[i], options[j] = options[j], options[i]
		})
		responses = append(responses, &QuestionResponse{
			ID:            question.ID,
			QuestionText:  question.QuestionText,
			Answers:       options,
			CorrectAnswer: question.CorrectAnswer,
		})
	}

	rand.Shuffle(len(responses), func(i, j int) {
		responses[i], responses[j] = responses[j], responses[i]
	})
	return responses, nil
}

// ===== CATALOG ADMINISTRATION =====

func (s *testService) ListTests(ctx context.Context, filters repositories.TestFilters) ([]*models.Test, error) {
	if s.catalog != nil && filters == (repositories.TestFilters{}) {
		if tests, ok := s.catalog.GetTests(ctx); ok {
			return tests, nil
		}
	}

	tests, err := s.repo.Test().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list tests: %w", err)
	}

	for _, test := range tests {
		count, err := s.repo.Question().CountByTest(ctx, test.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count questions: %w", err)
		}
		test.QuestionsCount = int(count)
	}

	if s.catalog != nil && filters == (repositories.TestFilters{}) {
		s.catalog.SetTests(ctx, tests)
	}
	return tests, nil
}

func (s *testService) CreateTest(ctx context.Context, req *CreateTestRequest, createdBy uint) (*models.Test, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	test := &models.Test{
		Name:         req.Name,
		Description:  req.Description,
		DisplayOrder: req.DisplayOrder,
		TimeLimit:    req.TimeLimit,
		MaxRetries:   req.MaxRetries,
		Active:       true,
		CreatedBy:    createdBy,
	}
	if req.Active != nil {
		test.Active = *req.Active
	}
	if test.TimeLimit == 0 {
		test.TimeLimit = 30
	}

	if err := s.repo.Test().Create(ctx, test); err != nil {
		return nil, fmt.Errorf("failed to create test: %w", err)
	}

	s.invalidateCatalog(ctx)
	s.logger.Info("Test created", "test_id", test.ID, "name", test.Name)
	return test, nil
}

func (s *testService) UpdateTest(ctx context.Context, id uint, req *UpdateTestRequest) (*models.Test, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	test, err := s.repo.Test().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	test.Name = req.Name
	test.Description = req.Description
	test.DisplayOrder = req.DisplayOrder
	if req.TimeLimit > 0 {
		test.TimeLimit = req.TimeLimit
	}
	test.MaxRetries = req.MaxRetries
	if req.Active != nil {
		test.Active = *req.Active
	}

	if err := s.repo.Test().Update(ctx, test); err != nil {
		return nil, fmt.Errorf("failed to update test: %w", err)
	}

	s.invalidateCatalog(ctx)
	return test, nil
}

func (s *testService) DeleteTest(ctx context.Context, id uint) error {
	if _, err := s.repo.Test().GetByID(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTestNotFound
		}
		return fmt.Errorf("failed to get test: %w", err)
	}
	if err := s.repo.Test().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete test: %w", err)
	}
	s.invalidateCatalog(ctx)
	return nil
}

// ===== QUESTION ADMINISTRATION =====

func (s *testService) ListQuestions(ctx context.Context, testID uint) ([]*models.Question, error) {
	if _, err := s.repo.Test().GetByID(ctx, testID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	questions, err := s.repo.Question().GetByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

func (s *testService) CreateQuestion(ctx context.Context, testID uint, req *QuestionRequest) (*models.Question, error) {
	if err := s.validateQuestion(req); err != nil {
		return nil, err
	}
	if _, err := s.repo.Test().GetByID(ctx, testID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	answersJSON, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answer options: %w", err)
	}

	question := &models.Question{
		TestID:        testID,
		QuestionText:  req.QuestionText,
		Answers:       answersJSON,
		CorrectAnswer: req.CorrectAnswer,
	}
	if err := s.repo.Question().Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	return question, nil
}

func (s *testService) UpdateQuestion(ctx context.Context, id uint, req *QuestionRequest) (*models.Question, error) {
	if err := s.validateQuestion(req); err != nil {
		return nil, err
	}

	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	answersJSON, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answer options: %w", err)
	}

	question.QuestionText = req.QuestionText
	question.Answers = answersJSON
	question.CorrectAnswer = req.CorrectAnswer

	if err := s.repo.Question().Update(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}
	return question, nil
}

func (s *testService) DeleteQuestion(ctx context.Context, id uint) error {
	if _, err := s.repo.Question().GetByID(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to get question: %w", err)
	}
	if err := s.repo.Question().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	return nil
}

// validateQuestion enforces the answer-key invariant: the correct answer must
// be one of the answer options.
func (s *testService) validateQuestion(req *QuestionRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	for _, option := range req.Answers {
		if option == req.CorrectAnswer {
			return nil
		}
	}
	return ErrInvalidAnswerKey
}

func (s *testService) invalidateCatalog(ctx context.Context) {
	if s.catalog != nil {
		s.catalog.Invalidate(ctx)
	}
}
