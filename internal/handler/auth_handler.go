package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"coursehub/internal/auth"
	apperrors "coursehub/internal/errors"
	"coursehub/internal/model"
	"coursehub/internal/service"
)

// bcrypt ignores input past this many bytes.
const maxPasswordBytes = 72

// SessionCookies builds the cookies that carry session tokens.
type SessionCookies interface {
	Cookie(sess *auth.Session) *http.Cookie
	ExpiredCookie() *http.Cookie
}

// AuthHandler handles signup, login and logout for users and admins.
type AuthHandler struct {
	authService service.AuthService
	cookies     SessionCookies
	// legacyLoginFailure answers bad credentials with 200 instead of 401.
	legacyLoginFailure bool
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, cookies SessionCookies, legacyLoginFailure bool) *AuthHandler {
	return &AuthHandler{
		authService:        authService,
		cookies:            cookies,
		legacyLoginFailure: legacyLoginFailure,
	}
}

// SignupRequest is the signup form.
type SignupRequest struct {
	Username string `form:"username" validate:"required,max=255"`
	Password string `form:"password" validate:"required"`
	Email    string `form:"email" validate:"omitempty,email,max=255"`
}

// LoginRequest is the login form.
type LoginRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// UserInfoResponse carries the logged-in user's name, or null.
type UserInfoResponse struct {
	Username *string `json:"username"`
}

// Signup godoc
// @Summary Create a user account
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Param email formData string false "Email"
// @Success 302 "Redirect to /login"
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	return h.signup(c, model.RoleUser)
}

// AdminSignup godoc
// @Summary Create an admin account
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Param email formData string false "Email"
// @Success 302 "Redirect to /adminlogin"
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /adminsignup [post]
func (h *AuthHandler) AdminSignup(c echo.Context) error {
	return h.signup(c, model.RoleAdmin)
}

func (h *AuthHandler) signup(c echo.Context, role model.Role) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return bindError()
	}
	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}
	if len(req.Password) > maxPasswordBytes {
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
			Message: apperrors.MessagePasswordTooLong,
			Code:    "PASSWORD_TOO_LONG",
		})
	}

	redirect, err := h.authService.Signup(c.Request().Context(), role, req.Username, req.Password, req.Email)
	if err != nil {
		return errorResponse(err)
	}
	return c.Redirect(http.StatusFound, redirect)
}

// Login godoc
// @Summary Log a user in
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Success 302 "Redirect to /home with the session cookie set"
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	return h.login(c, model.RoleUser)
}

// AdminLogin godoc
// @Summary Log an admin in
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Success 302 "Redirect to /adminhome with the session cookie set"
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /adminlogin [post]
func (h *AuthHandler) AdminLogin(c echo.Context) error {
	return h.login(c, model.RoleAdmin)
}

func (h *AuthHandler) login(c echo.Context, role model.Role) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return bindError()
	}
	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	var previous string
	if carried := auth.SessionFrom(c); carried != nil {
		previous = carried.Token
	}

	sess, redirect, err := h.authService.Login(c.Request().Context(), role, previous, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) && h.legacyLoginFailure {
			return c.JSON(http.StatusOK, MessageResponse{Message: apperrors.MessageInvalidCredentials})
		}
		return errorResponse(err)
	}

	c.SetCookie(h.cookies.Cookie(sess))
	return c.Redirect(http.StatusFound, redirect)
}

// Logout godoc
// @Summary End the current session
// @Tags auth
// @Produce json
// @Success 302 "Redirect to /login"
// @Failure 500 {object} errors.ErrorResponse
// @Router /logout [get]
func (h *AuthHandler) Logout(c echo.Context) error {
	var token string
	if sess := auth.SessionFrom(c); sess != nil {
		token = sess.Token
	}
	if err := h.authService.Logout(c.Request().Context(), token); err != nil {
		return errorResponse(err)
	}
	c.SetCookie(h.cookies.ExpiredCookie())
	return c.Redirect(http.StatusFound, model.RoleUser.LoginPath())
}

// UserInfo godoc
// @Summary Name of the logged-in user
// @Tags auth
// @Produce json
// @Success 200 {object} UserInfoResponse
// @Failure 401 {object} UserInfoResponse
// @Router /api/get-user-info [get]
func (h *AuthHandler) UserInfo(c echo.Context) error {
	username, ok := auth.SessionFrom(c).Marker(model.RoleUser)
	if !ok {
		return c.JSON(http.StatusUnauthorized, UserInfoResponse{})
	}
	return c.JSON(http.StatusOK, UserInfoResponse{Username: &username})
}
