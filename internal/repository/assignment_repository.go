package repository

import (
	"context"

	"gorm.io/gorm"

	"coursehub/internal/model"
)

// AssignmentRepository defines assignment persistence operations.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *model.Assignment) error
	List(ctx context.Context) ([]model.Assignment, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository creates a new assignment repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *model.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepository) List(ctx context.Context) ([]model.Assignment, error) {
	assignments := make([]model.Assignment, 0)
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}
