package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"go.uber.org/zap"

	apperrors "coursehub/internal/errors"
	"coursehub/internal/metrics"
	"coursehub/internal/model"
	"coursehub/internal/repository"
	"coursehub/internal/upload"
)

const (
	// CourseFileField is the multipart field carrying the course file.
	CourseFileField = "file"

	coursesCacheKey = "courses:all"
)

// FileStore stores and removes uploaded course files.
type FileStore interface {
	Store(ctx context.Context, field string, fh *multipart.FileHeader) (*upload.StoredFile, error)
	Remove(stored *upload.StoredFile) error
}

// CourseOptions tunes CourseService.
type CourseOptions struct {
	StoreTimeout   time.Duration
	UploadTimeout  time.Duration
	CleanupOrphans bool
}

// CourseService publishes and lists courses.
type CourseService interface {
	PostCourse(ctx context.Context, title, description string, file *multipart.FileHeader) (*model.Course, error)
	ListCourses(ctx context.Context) ([]model.Course, error)
}

type courseService struct {
	repo   repository.CourseRepository
	files  FileStore
	cache  ListCache
	logger *zap.Logger
	opts   CourseOptions
}

// NewCourseService builds a CourseService. cache may be nil.
func NewCourseService(repo repository.CourseRepository, files FileStore, cache ListCache, logger *zap.Logger, opts CourseOptions) CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &courseService{repo: repo, files: files, cache: cache, logger: logger, opts: opts}
}

// PostCourse stores the file, then records the course. A missing or
// unsupported file is rejected before anything is written.
func (s *courseService) PostCourse(ctx context.Context, title, description string, file *multipart.FileHeader) (*model.Course, error) {
	if file == nil {
		metrics.RecordUpload("", metrics.OutcomeRejected)
		return nil, apperrors.ErrMissingFile
	}
	log := s.logger.With(zap.String("title", title), zap.String("original_name", file.Filename))

	uploadCtx, cancel := withTimeout(ctx, s.opts.UploadTimeout)
	stored, err := s.files.Store(uploadCtx, CourseFileField, file)
	cancel()
	if err != nil {
		if errors.Is(err, apperrors.ErrUnsupportedFileType) {
			log.Info("upload rejected", zap.Error(err))
			metrics.RecordUpload("", metrics.OutcomeRejected)
			return nil, err
		}
		log.Error("store upload", zap.Error(err))
		metrics.RecordUpload("", metrics.OutcomeError)
		return nil, fmt.Errorf("%w: store upload: %w", apperrors.ErrStore, err)
	}

	course := &model.Course{
		Title:       title,
		Description: description,
		FilePath:    stored.Path,
		FileType:    stored.DeclaredMimeType,
	}

	storeCtx, cancel := withTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()
	if err := s.repo.Create(storeCtx, course); err != nil {
		log.Error("insert course", zap.Error(err), zap.String("path", stored.Path))
		if s.opts.CleanupOrphans {
			if rmErr := s.files.Remove(stored); rmErr != nil {
				log.Error("remove orphaned upload", zap.Error(rmErr), zap.String("path", stored.Path))
			} else {
				log.Info("removed orphaned upload", zap.String("path", stored.Path))
			}
		}
		metrics.RecordUpload(string(stored.Bucket), metrics.OutcomeError)
		return nil, fmt.Errorf("%w: insert course: %w", apperrors.ErrStore, err)
	}

	invalidateList(ctx, s.cache, s.logger, coursesCacheKey)
	log.Info("course posted",
		zap.Uint("course_id", course.ID),
		zap.String("bucket", string(stored.Bucket)),
		zap.Int64("size", stored.Size),
	)
	metrics.RecordUpload(string(stored.Bucket), metrics.OutcomeSuccess)
	return course, nil
}

func (s *courseService) ListCourses(ctx context.Context) ([]model.Course, error) {
	return cachedList(ctx, s.cache, s.logger, coursesCacheKey, func(ctx context.Context) ([]model.Course, error) {
		storeCtx, cancel := withTimeout(ctx, s.opts.StoreTimeout)
		defer cancel()
		courses, err := s.repo.List(storeCtx)
		if err != nil {
			return nil, fmt.Errorf("%w: list courses: %w", apperrors.ErrStore, err)
		}
		return courses, nil
	})
}
