package repository

import (
	"context"

	"gorm.io/gorm"

	"coursehub/internal/model"
)

// QuizRepository defines quiz persistence operations.
type QuizRepository interface {
	Create(ctx context.Context, quiz *model.Quiz) error
	List(ctx context.Context) ([]model.Quiz, error)
}

type quizRepository struct {
	db *gorm.DB
}

// NewQuizRepository creates a new quiz repository.
func NewQuizRepository(db *gorm.DB) QuizRepository {
	return &quizRepository{db: db}
}

func (r *quizRepository) Create(ctx context.Context, quiz *model.Quiz) error {
	return r.db.WithContext(ctx).Create(quiz).Error
}

func (r *quizRepository) List(ctx context.Context) ([]model.Quiz, error) {
	quizzes := make([]model.Quiz, 0)
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&quizzes).Error; err != nil {
		return nil, err
	}
	return quizzes, nil
}
