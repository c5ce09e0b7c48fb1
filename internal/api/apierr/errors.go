package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/syslvlup/syslvlup/internal/model"
	"github.com/syslvlup/syslvlup/internal/services/auth"
)

// ErrorResponse is the JSON body of every error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidPayload     = "INVALID_PAYLOAD"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeInvalidEmail       = "INVALID_EMAIL"
	CodeWeakPassword       = "WEAK_PASSWORD"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidLink        = "INVALID_LINK"
	CodeLinkExpired        = "LINK_EXPIRED"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an error body
type httpError struct {
	status int
	body   ErrorResponse
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.body.Error
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(he.body)
}

// Status returns the HTTP status WriteError would use for err
func Status(err error) int {
	return toHTTPError(err).status
}

func newError(status int, code, message string) *httpError {
	return &httpError{status: status, body: ErrorResponse{Error: message, Code: code}}
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Sync errors
	case errors.Is(err, model.ErrUserDataNotFound):
		return newError(http.StatusNotFound, CodeUserNotFound, "User not found")
	case errors.Is(err, model.ErrMissingUserID):
		return newError(http.StatusBadRequest, CodeInvalidRequest, "userId is required")
	case errors.Is(err, model.ErrInvalidPayload):
		return newError(http.StatusBadRequest, CodeInvalidPayload, "localStorageData must be a JSON object")

	// Auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return newError(http.StatusUnauthorized, CodeInvalidCredentials, "Invalid email or password")
	case errors.Is(err, auth.ErrInvalidToken):
		return newError(http.StatusUnauthorized, CodeUnauthorized, "Invalid or expired token")
	case errors.Is(err, auth.ErrEmailExists):
		return newError(http.StatusConflict, CodeEmailExists, "Email already registered")
	case errors.Is(err, auth.ErrInvalidEmail):
		return newError(http.StatusBadRequest, CodeInvalidEmail, "Invalid email address")
	case errors.Is(err, auth.ErrWeakPassword):
		return newError(http.StatusBadRequest, CodeWeakPassword, "Password is too short")
	case errors.Is(err, auth.ErrLinkExpired):
		return newError(http.StatusGone, CodeLinkExpired, "Device link expired")
	case errors.Is(err, auth.ErrInvalidLink):
		return newError(http.StatusBadRequest, CodeInvalidLink, "Invalid device link")

	default:
		return newError(http.StatusInternalServerError, CodeInternalError, "Internal server error")
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return newError(http.StatusBadRequest, CodeInvalidRequest, message)
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return newError(http.StatusUnauthorized, CodeUnauthorized, "Authentication required")
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError(message string) error {
	return newError(http.StatusForbidden, CodeForbidden, message)
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return newError(http.StatusInternalServerError, CodeInternalError, "Internal server error")
}
