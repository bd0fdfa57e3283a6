package postgres

import (
	"context"

	"github.com/shopsafety/quiz-service/internal/models"
	"github.com/shopsafety/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a *AttemptPostgreSQL) Create(ctx context.Context, attempt *models.Attempt) error {
	return a.db.WithContext(ctx).Create(attempt).Error
}

func (a *AttemptPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Attempt, error) {
	var attempt models.Attempt
	if err := a.db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) List(ctx context.Context, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	var attempts []*models.Attempt
	var total int64

	query := a.db.WithContext(ctx).Model(&models.Attempt{})
	query = a.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("attempt_timestamp DESC, id DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&attempts).Error; err != nil {
		return nil, 0, err
	}
	return attempts, total, nil
}

// GetLatestByUserAndTest orders by timestamp then row id so that attempts
// sharing an identical timestamp resolve deterministically.
func (a *AttemptPostgreSQL) GetLatestByUserAndTest(ctx context.Context, userID, testID uint) (*models.Attempt, error) {
	var attempt models.Attempt
	if err := a.db.WithContext(ctx).
		Where("user_id = ? AND test_id = ?", userID, testID).
		Order("attempt_timestamp DESC, id DESC").
		First(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetLatestByUser(ctx context.Context, userID uint) ([]*models.Attempt, error) {
	var attempts []*models.Attempt
	if err := a.db.WithContext(ctx).
		Raw(`SELECT DISTINCT ON (test_id) *
		     FROM user_test_results
		     WHERE user_id = ?
		     ORDER BY test_id, attempt_timestamp DESC, id DESC`, userID).
		Scan(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (a *AttemptPostgreSQL) CreateFailedQuestions(ctx context.Context, records []*models.FailedQuestion) error {
	if len(records) == 0 {
		return nil
	}
	return a.db.WithContext(ctx).Create(records).Error
}

func (a *AttemptPostgreSQL) GetFailedQuestions(ctx context.Context, attemptID uint) ([]*repositories.FailedQuestionDetail, error) {
	var details []*repositories.FailedQuestionDetail
	if err := a.db.WithContext(ctx).
		Table("failed_questions fq").
		Select("fq.question_id, q.question_text, fq.selected_answer").
		Joins("JOIN questions q ON q.id = fq.question_id").
		Where("fq.user_test_result_id = ?", attemptID).
		Order("fq.id").
		Scan(&details).Error; err != nil {
		return nil, err
	}
	return details, nil
}

func (a *AttemptPostgreSQL) ListScores(ctx context.Context, filters repositories.AttemptFilters) ([]*repositories.ScoreRow, error) {
	var rows []*repositories.ScoreRow

	query := a.db.WithContext(ctx).
		Table("user_test_results utr").
		Select(`u.first_name, u.last_name, t.name AS test_name,
		        utr.score, utr.total_questions, utr.percentage, utr.passed,
		        utr.attempt_timestamp`).
		Joins("JOIN users u ON u.id = utr.user_id").
		Joins("JOIN tests t ON t.id = utr.test_id").
		Order("utr.attempt_timestamp DESC")

	if filters.TestID != nil {
		query = query.Where("utr.test_id = ?", *filters.TestID)
	}
	if filters.UserID != nil {
		query = query.Where("utr.user_id = ?", *filters.UserID)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}

	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (a *AttemptPostgreSQL) applyFilters(query *gorm.DB, filters repositories.AttemptFilters) *gorm.DB {
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.TestID != nil {
		query = query.Where("test_id = ?", *filters.TestID)
	}
	if filters.Passed != nil {
		query = query.Where("passed = ?", *filters.Passed)
	}
	if filters.DateFrom != nil {
		query = query.Where("attempt_timestamp >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("attempt_timestamp <= ?", *filters.DateTo)
	}
	return query
}
