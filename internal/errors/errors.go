package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrHashing is returned when the password hasher fails internally or is
	// handed a malformed hash.
	ErrHashing = errors.New("password hashing failed")
	// ErrStore is returned for persistence or connectivity failures.
	ErrStore = errors.New("store operation failed")
	// ErrDuplicateAccount is returned when the username is already taken in the role's collection.
	ErrDuplicateAccount = errors.New("account already exists")
	// ErrInvalidCredentials is returned for an unknown username and for a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUnsupportedFileType is returned when an upload's declared MIME type has no bucket.
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrMissingFile is returned when a course is posted without an attached file.
	ErrMissingFile = errors.New("missing file")
	// ErrUnauthenticated is returned when the session carries no marker for the required role.
	ErrUnauthenticated = errors.New("not authenticated")
)

// Client-facing messages. Infrastructure failures never leak their cause.
const (
	MessageInvalidCredentials = "Incorrect username or password"
	MessageMissingFile        = "Please upload a video or PDF file"
	MessageUnsupportedFile    = "Unsupported file type"
	MessageDuplicateAccount   = "Username already taken"
	MessageUnauthenticated    = "Authentication required"
	MessageInternal           = "Internal server error"
	MessageInvalidForm        = "Missing or invalid form fields"
	MessagePasswordTooLong    = "Password must be at most 72 bytes"
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Message: e.Message,
		Code:    e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Business-rule failures
// keep a specific message; everything else collapses into an opaque 500.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, MessageInvalidCredentials, "INVALID_CREDENTIALS")
	case errors.Is(err, ErrDuplicateAccount):
		return NewHTTPError(http.StatusConflict, MessageDuplicateAccount, "DUPLICATE_ACCOUNT")
	case errors.Is(err, ErrMissingFile):
		return NewHTTPError(http.StatusBadRequest, MessageMissingFile, "MISSING_FILE")
	case errors.Is(err, ErrUnsupportedFileType):
		return NewHTTPError(http.StatusBadRequest, MessageUnsupportedFile, "UNSUPPORTED_FILE_TYPE")
	case errors.Is(err, ErrUnauthenticated):
		return NewHTTPError(http.StatusUnauthorized, MessageUnauthenticated, "UNAUTHENTICATED")
	case errors.Is(err, ErrHashing):
		return NewHTTPError(http.StatusInternalServerError, MessageInternal, "HASHING_ERROR")
	case errors.Is(err, ErrStore):
		return NewHTTPError(http.StatusInternalServerError, MessageInternal, "STORE_ERROR")
	default:
		return NewHTTPError(http.StatusInternalServerError, MessageInternal, "INTERNAL_ERROR")
	}
}
