package postgres

import (
	"context"

	"github.com/shopsafety/quiz-service/internal/models"
	"github.com/shopsafety/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type CohortPostgreSQL struct {
	db *gorm.DB
}

func NewCohortPostgreSQL(db *gorm.DB) repositories.CohortRepository {
	return &CohortPostgreSQL{db: db}
}

func (c *CohortPostgreSQL) Create(ctx context.Context, cohort *models.Cohort) error {
	return c.db.WithContext(ctx).Create(cohort).Error
}

func (c *CohortPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Cohort, error) {
	var cohort models.Cohort
	if err := c.db.WithContext(ctx).First(&cohort, id).Error; err != nil {
		return nil, err
	}
	return &cohort, nil
}

func (c *CohortPostgreSQL) List(ctx context.Context) ([]*models.Cohort, error) {
	var cohorts []*models.Cohort
	if err := c.db.WithContext(ctx).Order("name").Find(&cohorts).Error; err != nil {
		return nil, err
	}
	return cohorts, nil
}

func (c *CohortPostgreSQL) Update(ctx context.Context, cohort *models.Cohort) error {
	return c.db.WithContext(ctx).Save(cohort).Error
}

func (c *CohortPostgreSQL) Delete(ctx context.Context, id uint) error {
	return c.db.WithContext(ctx).Delete(&models.Cohort{}, id).Error
}
