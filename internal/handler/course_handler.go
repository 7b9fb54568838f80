package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"coursehub/internal/service"
)

const dueDateLayout = "2006-01-02"

// CourseHandler handles course, assignment and quiz endpoints.
type CourseHandler struct {
	courseService     service.CourseService
	assignmentService service.AssignmentService
	quizService       service.QuizService
}

// NewCourseHandler creates a new course handler.
func NewCourseHandler(
	courseService service.CourseService,
	assignmentService service.AssignmentService,
	quizService service.QuizService,
) *CourseHandler {
	return &CourseHandler{
		courseService:     courseService,
		assignmentService: assignmentService,
		quizService:       quizService,
	}
}

// PostCourseRequest is the text part of the course upload form.
type PostCourseRequest struct {
	CourseName        string `form:"courseName" validate:"max=255"`
	CourseDescription string `form:"courseDescription"`
}

// PostCourseResponse confirms a course upload.
type PostCourseResponse struct {
	Message  string `json:"message"`
	FilePath string `json:"filePath"`
}

// PostAssignmentRequest is the assignment form.
type PostAssignmentRequest struct {
	CourseID    uint   `form:"course_id" validate:"required"`
	Title       string `form:"title" validate:"required,max=255"`
	Description string `form:"description"`
	DueDate     string `form:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

// PostQuizRequest is the quiz form.
type PostQuizRequest struct {
	CourseID  uint   `form:"course_id" validate:"required"`
	Title     string `form:"title" validate:"required,max=255"`
	Questions string `form:"questions"`
}

// PostCourse godoc
// @Summary Publish a course with a PDF or video file
// @Tags courses
// @Accept multipart/form-data
// @Produce json
// @Param courseName formData string false "Course title"
// @Param courseDescription formData string false "Course description"
// @Param file formData file true "PDF or video file"
// @Success 200 {object} PostCourseResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /post-course [post]
func (h *CourseHandler) PostCourse(c echo.Context) error {
	var req PostCourseRequest
	if err := c.Bind(&req); err != nil {
		return bindError()
	}
	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	fh, err := c.FormFile(service.CourseFileField)
	if err != nil {
		if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
			return bindError()
		}
		fh = nil
	}

	course, err := h.courseService.PostCourse(c.Request().Context(), req.CourseName, req.CourseDescription, fh)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, PostCourseResponse{
		Message:  "Course posted successfully",
		FilePath: course.FilePath,
	})
}

// ListCourses godoc
// @Summary List courses
// @Tags courses
// @Produce json
// @Success 200 {array} model.Course
// @Failure 500 {object} errors.ErrorResponse
// @Router /get-courses [get]
func (h *CourseHandler) ListCourses(c echo.Context) error {
	courses, err := h.courseService.ListCourses(c.Request().Context())
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, courses)
}

// PostAssignment godoc
// @Summary Publish an assignment
// @Tags assignments
// @Accept x-www-form-urlencoded
// @Produce json
// @Param course_id formData int true "Course ID"
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param due_date formData string false "Due date (YYYY-MM-DD)"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /post-assignment [post]
func (h *CourseHandler) PostAssignment(c echo.Context) error {
	var req PostAssignmentRequest
	if err := c.Bind(&req); err != nil {
		return bindError()
	}
	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	var due *time.Time
	if req.DueDate != "" {
		parsed, err := time.Parse(dueDateLayout, req.DueDate)
		if err != nil {
			return validationError(err)
		}
		due = &parsed
	}

	if _, err := h.assignmentService.Post(c.Request().Context(), req.CourseID, req.Title, req.Description, due); err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Assignment posted successfully"})
}

// ListAssignments godoc
// @Summary List assignments
// @Tags assignments
// @Produce json
// @Success 200 {array} model.Assignment
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/get-assignments [get]
func (h *CourseHandler) ListAssignments(c echo.Context) error {
	assignments, err := h.assignmentService.List(c.Request().Context())
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, assignments)
}

// PostQuiz godoc
// @Summary Publish a quiz
// @Tags quizzes
// @Accept x-www-form-urlencoded
// @Produce json
// @Param course_id formData int true "Course ID"
// @Param title formData string true "Title"
// @Param questions formData string false "Questions"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /post-quiz [post]
func (h *CourseHandler) PostQuiz(c echo.Context) error {
	var req PostQuizRequest
	if err := c.Bind(&req); err != nil {
		return bindError()
	}
	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	if _, err := h.quizService.Post(c.Request().Context(), req.CourseID, req.Title, req.Questions); err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Quiz posted successfully"})
}

// ListQuizzes godoc
// @Summary List quizzes
// @Tags quizzes
// @Produce json
// @Success 200 {array} model.Quiz
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/get-quizzes [get]
func (h *CourseHandler) ListQuizzes(c echo.Context) error {
	quizzes, err := h.quizService.List(c.Request().Context())
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, quizzes)
}
