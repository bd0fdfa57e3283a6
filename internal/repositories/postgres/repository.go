package postgres

import (
	"context"
	"errors"

	"github.com/shopsafety/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

var errNotInTransaction = errors.New("repository is not in a transaction")

// gormRepository implements repositories.Repository on a *gorm.DB. Begin
// returns a copy bound to a transaction handle; the original stays usable.
type gormRepository struct {
	db   *gorm.DB
	inTx bool

	test     repositories.TestRepository
	question repositories.QuestionRepository
	attempt  repositories.AttemptRepository
	user     repositories.UserRepository
	cohort   repositories.CohortRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return newGormRepository(db, false)
}

func newGormRepository(db *gorm.DB, inTx bool) *gormRepository {
	return &gormRepository{
		db:       db,
		inTx:     inTx,
		test:     NewTestPostgreSQL(db),
		question: NewQuestionPostgreSQL(db),
		attempt:  NewAttemptPostgreSQL(db),
		user:     NewUserPostgreSQL(db),
		cohort:   NewCohortPostgreSQL(db),
	}
}

func (r *gormRepository) Test() repositories.TestRepository         { return r.test }
func (r *gormRepository) Question() repositories.QuestionRepository { return r.question }
func (r *gormRepository) Attempt() repositories.AttemptRepository   { return r.attempt }
func (r *gormRepository) User() repositories.UserRepository         { return r.user }
func (r *gormRepository) Cohort() repositories.CohortRepository     { return r.cohort }

func (r *gormRepository) Begin(ctx context.Context) (repositories.Repository, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return newGormRepository(tx, true), nil
}

func (r *gormRepository) Commit(ctx context.Context) error {
	if !r.inTx {
		return errNotInTransaction
	}
	return r.db.Commit().Error
}

func (r *gormRepository) Rollback(ctx context.Context) error {
	if !r.inTx {
		return errNotInTransaction
	}
	return r.db.Rollback().Error
}
