package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "coursehub/internal/errors"
)

// MessageResponse is the body of a successful form post.
type MessageResponse struct {
	Message string `json:"message"`
}

func errorResponse(err error) error {
	he := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
}

// validationError hides validator detail (struct and field names) from the
// client; it stays on the error as the internal cause for the request log.
func validationError(err error) error {
	return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
		Message: apperrors.MessageInvalidForm,
		Code:    "VALIDATION_ERROR",
	}).SetInternal(err)
}

func bindError() error {
	return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
		Message: "invalid form data",
		Code:    "INVALID_FORM",
	})
}
