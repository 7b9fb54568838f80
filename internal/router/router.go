package router

import (
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"coursehub/internal/auth"
	"coursehub/internal/config"
	"coursehub/internal/handler"
	"coursehub/internal/logging"
	"coursehub/internal/metrics"
	"coursehub/internal/model"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	logger *zap.Logger,
	sessions *auth.Manager,
	pageHandler *handler.PageHandler,
	authHandler *handler.AuthHandler,
	courseHandler *handler.CourseHandler,
) {
	if logger == nil {
		logger = zap.NewNop()
	}

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(logging.RequestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(auth.SessionMiddleware(sessions, logger))

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Home pages live in the public dir too but are only reachable through
	// their guarded routes.
	e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
		Root:    cfg.PublicDir,
		Skipper: guardedPage,
	}))

	// Account pages and forms
	for _, role := range model.Roles() {
		home := auth.RequireRole(role, auth.GuardRedirect)
		e.GET(role.LoginPath(), pageHandler.LoginPage(role))
		e.GET(role.SignupPath(), pageHandler.SignupPage(role))
		e.GET(role.HomePath(), pageHandler.HomePage(role), home)
		e.GET("/"+role.HomePage(), pageHandler.HomePage(role), home)
	}
	e.POST(model.RoleUser.SignupPath(), authHandler.Signup)
	e.POST(model.RoleAdmin.SignupPath(), authHandler.AdminSignup)
	e.POST(model.RoleUser.LoginPath(), authHandler.Login)
	e.POST(model.RoleAdmin.LoginPath(), authHandler.AdminLogin)
	e.GET("/logout", authHandler.Logout)
	e.GET("/api/get-user-info", authHandler.UserInfo)

	// Content reads are public
	e.GET("/get-courses", courseHandler.ListCourses)
	e.GET("/api/get-assignments", courseHandler.ListAssignments)
	e.GET("/api/get-quizzes", courseHandler.ListQuizzes)

	// Content writes
	var guard []echo.MiddlewareFunc
	if cfg.ProtectContentPosts {
		guard = append(guard, auth.RequireRole(model.RoleAdmin, auth.GuardReject))
	}
	uploadLimit := middleware.BodyLimit(strconv.FormatInt(cfg.UploadMaxBytes, 10))
	e.POST("/post-course", courseHandler.PostCourse, append(guard, uploadLimit)...)
	e.POST("/post-assignment", courseHandler.PostAssignment, guard...)
	e.POST("/post-quiz", courseHandler.PostQuiz, guard...)
}

// guardedPage reports whether the request names a role's home page file.
// Both the full path and a wildcard param are checked, unescaped and cleaned
// the way the static middleware resolves them.
func guardedPage(c echo.Context) bool {
	candidates := []string{c.Request().URL.Path}
	if strings.HasSuffix(c.Path(), "*") {
		candidates = append(candidates, c.Param("*"))
	}
	for _, p := range candidates {
		if unescaped, err := url.PathUnescape(p); err == nil {
			p = unescaped
		}
		name := path.Base(path.Clean("/" + p))
		for _, role := range model.Roles() {
			if strings.EqualFold(name, role.HomePage()) {
				return true
			}
		}
	}
	return false
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
