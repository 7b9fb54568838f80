package handler

import (
	"path/filepath"

	"github.com/labstack/echo/v4"

	"coursehub/internal/model"
)

var (
	loginPages = map[model.Role]string{
		model.RoleUser:  "login.html",
		model.RoleAdmin: "admin_login.html",
	}
	signupPages = map[model.Role]string{
		model.RoleUser:  "signup.html",
		model.RoleAdmin: "admin_signup.html",
	}
)

// PageHandler serves the static HTML pages from the public directory.
type PageHandler struct {
	publicDir string
}

// NewPageHandler creates a page handler rooted at publicDir.
func NewPageHandler(publicDir string) *PageHandler {
	return &PageHandler{publicDir: publicDir}
}

// LoginPage serves the role's login form.
func (h *PageHandler) LoginPage(role model.Role) echo.HandlerFunc {
	return h.page(loginPages[role])
}

// SignupPage serves the role's signup form.
func (h *PageHandler) SignupPage(role model.Role) echo.HandlerFunc {
	return h.page(signupPages[role])
}

// HomePage serves the role's landing page. Mount it behind the role's guard.
func (h *PageHandler) HomePage(role model.Role) echo.HandlerFunc {
	return h.page(role.HomePage())
}

func (h *PageHandler) page(name string) echo.HandlerFunc {
	path := filepath.Join(h.publicDir, name)
	return func(c echo.Context) error {
		return c.File(path)
	}
}
