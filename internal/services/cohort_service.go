package services

import (
	"context"
	"fmt"

	"github.com/shopsafety/quiz-service/internal/models"
	"github.com/shopsafety/quiz-service/internal/repositories"
	"github.com/shopsafety/quiz-service/internal/utils"
	"github.com/shopsafety/quiz-service/internal/validator"
)

type cohortService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *validator.Validator
}

func NewCohortService(repo repositories.Repository, logger utils.Logger, validator *validator.Validator) CohortService {
	return &cohortService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *cohortService) List(ctx context.Context) ([]*models.Cohort, error) {
	cohorts, err := s.repo.Cohort().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cohorts: %w", err)
	}
	return cohorts, nil
}

func (s *cohortService) Create(ctx context.Context, req *CohortRequest) (*models.Cohort, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	cohort := &models.Cohort{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.repo.Cohort().Create(ctx, cohort); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to create cohort: %w", err)
	}
	return cohort, nil
}

func (s *cohortService) Update(ctx context.Context, id uint, req *CohortRequest) (*models.Cohort, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	cohort, err := s.repo.Cohort().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCohortNotFound
		}
		return nil, fmt.Errorf("failed to get cohort: %w", err)
	}

	cohort.Name = req.Name
	cohort.Description = req.Description
	if err := s.repo.Cohort().Update(ctx, cohort); err != nil {
		return nil, fmt.Errorf("failed to update cohort: %w", err)
	}
	return cohort, nil
}

func (s *cohortService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.Cohort().GetByID(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCohortNotFound
		}
		return fmt.Errorf("failed to get cohort: %w", err)
	}

	cohortID := id
	_, total, err := s.repo.User().List(ctx, repositories.UserFilters{CohortID: &cohortID, Limit: 1})
	if err != nil {
		return fmt.Errorf("failed to check cohort members: %w", err)
	}
	if total > 0 {
		return ErrCohortNotEmpty
	}

	if err := s.repo.Cohort().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete cohort: %w", err)
	}
	return nil
}
