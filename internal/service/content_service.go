package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	apperrors "coursehub/internal/errors"
	"coursehub/internal/model"
	"coursehub/internal/repository"
)

const (
	assignmentsCacheKey = "assignments:all"
	quizzesCacheKey     = "quizzes:all"
)

// AssignmentService publishes and lists assignments.
type AssignmentService interface {
	Post(ctx context.Context, courseID uint, title, description string, dueDate *time.Time) (*model.Assignment, error)
	List(ctx context.Context) ([]model.Assignment, error)
}

type assignmentService struct {
	repo         repository.AssignmentRepository
	cache        ListCache
	logger       *zap.Logger
	storeTimeout time.Duration
}

// NewAssignmentService builds an AssignmentService. cache may be nil.
func NewAssignmentService(repo repository.AssignmentRepository, cache ListCache, logger *zap.Logger, storeTimeout time.Duration) AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &assignmentService{repo: repo, cache: cache, logger: logger, storeTimeout: storeTimeout}
}

func (s *assignmentService) Post(ctx context.Context, courseID uint, title, description string, dueDate *time.Time) (*model.Assignment, error) {
	assignment := &model.Assignment{
		CourseID:    courseID,
		Title:       title,
		Description: description,
		DueDate:     dueDate,
	}

	storeCtx, cancel := withTimeout(ctx, s.storeTimeout)
	defer cancel()
	if err := s.repo.Create(storeCtx, assignment); err != nil {
		s.logger.Error("insert assignment", zap.Uint("course_id", courseID), zap.Error(err))
		return nil, fmt.Errorf("%w: insert assignment: %w", apperrors.ErrStore, err)
	}

	invalidateList(ctx, s.cache, s.logger, assignmentsCacheKey)
	s.logger.Info("assignment posted", zap.Uint("assignment_id", assignment.ID), zap.Uint("course_id", courseID))
	return assignment, nil
}

func (s *assignmentService) List(ctx context.Context) ([]model.Assignment, error) {
	return cachedList(ctx, s.cache, s.logger, assignmentsCacheKey, func(ctx context.Context) ([]model.Assignment, error) {
		storeCtx, cancel := withTimeout(ctx, s.storeTimeout)
		defer cancel()
		items, err := s.repo.List(storeCtx)
		if err != nil {
			return nil, fmt.Errorf("%w: list assignments: %w", apperrors.ErrStore, err)
		}
		return items, nil
	})
}

// QuizService publishes and lists quizzes.
type QuizService interface {
	Post(ctx context.Context, courseID uint, title, questions string) (*model.Quiz, error)
	List(ctx context.Context) ([]model.Quiz, error)
}

type quizService struct {
	repo         repository.QuizRepository
	cache        ListCache
	logger       *zap.Logger
	storeTimeout time.Duration
}

// NewQuizService builds a QuizService. cache may be nil.
func NewQuizService(repo repository.QuizRepository, cache ListCache, logger *zap.Logger, storeTimeout time.Duration) QuizService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &quizService{repo: repo, cache: cache, logger: logger, storeTimeout: storeTimeout}
}

func (s *quizService) Post(ctx context.Context, courseID uint, title, questions string) (*model.Quiz, error) {
	quiz := &model.Quiz{
		CourseID:  courseID,
		Title:     title,
		Questions: questions,
	}

	storeCtx, cancel := withTimeout(ctx, s.storeTimeout)
	defer cancel()
	if err := s.repo.Create(storeCtx, quiz); err != nil {
		s.logger.Error("insert quiz", zap.Uint("course_id", courseID), zap.Error(err))
		return nil, fmt.Errorf("%w: insert quiz: %w", apperrors.ErrStore, err)
	}

	invalidateList(ctx, s.cache, s.logger, quizzesCacheKey)
	s.logger.Info("quiz posted", zap.Uint("quiz_id", quiz.ID), zap.Uint("course_id", courseID))
	return quiz, nil
}

func (s *quizService) List(ctx context.Context) ([]model.Quiz, error) {
	return cachedList(ctx, s.cache, s.logger, quizzesCacheKey, func(ctx context.Context) ([]model.Quiz, error) {
		storeCtx, cancel := withTimeout(ctx, s.storeTimeout)
		defer cancel()
		items, err := s.repo.List(storeCtx)
		if err != nil {
			return nil, fmt.Errorf("%w: list quizzes: %w", apperrors.ErrStore, err)
		}
		return items, nil
	})
}
