package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"coursehub/internal/auth"
	apperrors "coursehub/internal/errors"
	"coursehub/internal/model"
)

type MockCourseService struct {
	mock.Mock
}

func (m *MockCourseService) PostCourse(ctx context.Context, title, description string, file *multipart.FileHeader) (*model.Course, error) {
	args := m.Called(ctx, title, description, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Course), args.Error(1)
}

func (m *MockCourseService) ListCourses(ctx context.Context) ([]model.Course, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Course), args.Error(1)
}

type MockAssignmentService struct {
	mock.Mock
}

func (m *MockAssignmentService) Post(ctx context.Context, courseID uint, title, description string, dueDate *time.Time) (*model.Assignment, error) {
	args := m.Called(ctx, courseID, title, description, dueDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Assignment), args.Error(1)
}

func (m *MockAssignmentService) List(ctx context.Context) ([]model.Assignment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Assignment), args.Error(1)
}

type MockQuizService struct {
	mock.Mock
}

func (m *MockQuizService) Post(ctx context.Context, courseID uint, title, questions string) (*model.Quiz, error) {
	args := m.Called(ctx, courseID, title, questions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quiz), args.Error(1)
}

func (m *MockQuizService) List(ctx context.Context) ([]model.Quiz, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Quiz), args.Error(1)
}

func newCourseTestServer(courses *MockCourseService, assignments *MockAssignmentService, quizzes *MockQuizService) *echo.Echo {
	e := newTestEcho(auth.NewManager(auth.NewMemoryStore(), auth.ManagerConfig{}))
	h := NewCourseHandler(courses, assignments, quizzes)
	e.POST("/post-course", h.PostCourse)
	e.GET("/get-courses", h.ListCourses)
	e.POST("/post-assignment", h.PostAssignment)
	e.GET("/api/get-assignments", h.ListAssignments)
	e.POST("/post-quiz", h.PostQuiz)
	e.GET("/api/get-quizzes", h.ListQuizzes)
	return e
}

func multipartCourse(t *testing.T, withFile bool) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("courseName", "Go 101"))
	require.NoError(t, w.WriteField("courseDescription", "basics"))
	if withFile {
		part, err := w.CreateFormFile("file", "intro.pdf")
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/post-course", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestCourseHandler_PostCourse(t *testing.T) {
	t.Run("success returns file path", func(t *testing.T) {
		courses := new(MockCourseService)
		courses.On("PostCourse", mock.Anything, "Go 101", "basics", mock.AnythingOfType("*multipart.FileHeader")).
			Return(&model.Course{ID: 1, FilePath: "uploads/pdfs/file-1700000000000-42.pdf"}, nil)
		e := newCourseTestServer(courses, nil, nil)

		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, multipartCourse(t, true))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"Course posted successfully","filePath":"uploads/pdfs/file-1700000000000-42.pdf"}`, rec.Body.String())
		courses.AssertExpectations(t)
	})

	t.Run("missing file", func(t *testing.T) {
		courses := new(MockCourseService)
		courses.On("PostCourse", mock.Anything, "Go 101", "basics", (*multipart.FileHeader)(nil)).
			Return(nil, apperrors.ErrMissingFile)
		e := newCourseTestServer(courses, nil, nil)

		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, multipartCourse(t, false))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"message":"Please upload a video or PDF file"`)
	})

	t.Run("unsupported type", func(t *testing.T) {
		courses := new(MockCourseService)
		courses.On("PostCourse", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, apperrors.ErrUnsupportedFileType)
		e := newCourseTestServer(courses, nil, nil)

		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, multipartCourse(t, true))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), apperrors.MessageUnsupportedFile)
	})
}

func TestCourseHandler_ListCourses(t *testing.T) {
	courses := new(MockCourseService)
	courses.On("ListCourses", mock.Anything).Return([]model.Course{}, nil)
	e := newCourseTestServer(courses, nil, nil)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/get-courses", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCourseHandler_PostAssignment(t *testing.T) {
	tests := []struct {
		name           string
		form           url.Values
		setupMock      func(*MockAssignmentService)
		expectedStatus int
	}{
		{
			name: "with due date",
			form: url.Values{"course_id": {"3"}, "title": {"Essay"}, "description": {"500 words"}, "due_date": {"2026-11-01"}},
			setupMock: func(m *MockAssignmentService) {
				m.On("Post", mock.Anything, uint(3), "Essay", "500 words", mock.MatchedBy(func(d *time.Time) bool {
					return d != nil && d.Equal(time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC))
				})).Return(&model.Assignment{ID: 1}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "without due date",
			form: url.Values{"course_id": {"3"}, "title": {"Essay"}},
			setupMock: func(m *MockAssignmentService) {
				m.On("Post", mock.Anything, uint(3), "Essay", "", (*time.Time)(nil)).Return(&model.Assignment{ID: 1}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "malformed due date",
			form:           url.Values{"course_id": {"3"}, "title": {"Essay"}, "due_date": {"01/11/2026"}},
			setupMock:      func(m *MockAssignmentService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing course",
			form:           url.Values{"title": {"Essay"}},
			setupMock:      func(m *MockAssignmentService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "store failure",
			form: url.Values{"course_id": {"3"}, "title": {"Essay"}},
			setupMock: func(m *MockAssignmentService) {
				m.On("Post", mock.Anything, uint(3), "Essay", "", (*time.Time)(nil)).Return(nil, apperrors.ErrStore)
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assignments := new(MockAssignmentService)
			tt.setupMock(assignments)
			e := newCourseTestServer(nil, assignments, nil)

			rec := postForm(e, "/post-assignment", tt.form)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.JSONEq(t, `{"message":"Assignment posted successfully"}`, rec.Body.String())
			}
			assignments.AssertExpectations(t)
		})
	}
}

func TestCourseHandler_PostQuiz(t *testing.T) {
	quizzes := new(MockQuizService)
	quizzes.On("Post", mock.Anything, uint(2), "Week 1", "1. What is a goroutine?").Return(&model.Quiz{ID: 1}, nil)
	e := newCourseTestServer(nil, nil, quizzes)

	rec := postForm(e, "/post-quiz", url.Values{"course_id": {"2"}, "title": {"Week 1"}, "questions": {"1. What is a goroutine?"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Quiz posted successfully"}`, rec.Body.String())
	quizzes.AssertExpectations(t)
}

func TestCourseHandler_ListQuizzesStoreFailure(t *testing.T) {
	quizzes := new(MockQuizService)
	quizzes.On("List", mock.Anything).Return(nil, apperrors.ErrStore)
	e := newCourseTestServer(nil, nil, quizzes)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/get-quizzes", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), apperrors.MessageInternal)
}
