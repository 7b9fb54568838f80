package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "coursehub/internal/errors"
	"coursehub/internal/model"
)

const sessionContextKey = "session"

// GuardMode selects how a denied request is answered.
type GuardMode int

const (
	// GuardRedirect answers with 302 to the role's login page. Used for pages.
	GuardRedirect GuardMode = iota
	// GuardReject answers with 401 and a JSON message. Used for API routes.
	GuardReject
)

// SessionMiddleware resolves the request's session cookie and stores the
// session on the echo context. A backend failure degrades to an empty
// session, which every guard denies.
func SessionMiddleware(m *Manager, logger *zap.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var token string
			if cookie, err := c.Cookie(m.CookieName()); err == nil {
				token = cookie.Value
			}

			sess, err := m.Resolve(c.Request().Context(), token)
			if err != nil {
				logger.Error("resolve session", zap.Error(err))
				if sess, err = m.Create(); err != nil {
					return echo.NewHTTPError(http.StatusInternalServerError, apperrors.ErrorResponse{
						Message: apperrors.MessageInternal,
						Code:    "SESSION_ERROR",
					})
				}
			}
			c.Set(sessionContextKey, sess)
			return next(c)
		}
	}
}

// SessionFrom returns the session resolved by SessionMiddleware, or nil.
func SessionFrom(c echo.Context) *Session {
	sess, _ := c.Get(sessionContextKey).(*Session)
	return sess
}

// RequireRole guards a route with Decide.
func RequireRole(role model.Role, mode GuardMode) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			decision := Decide(SessionFrom(c), role)
			if decision.Verdict == Allow {
				return next(c)
			}
			if mode == GuardRedirect {
				return c.Redirect(http.StatusFound, decision.Target)
			}
			return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
				Message: apperrors.MessageUnauthenticated,
				Code:    "UNAUTHENTICATED",
			})
		}
	}
}
