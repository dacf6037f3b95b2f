package handlers

import (
	"fmt"
	"net/http"

	"github.com/cyverse-de/quiet-hours/db"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// AuthorizationError indicates that a request did not present the shared trigger secret.
type AuthorizationError struct {
	message string
}

// Error returns the error message for an AuthorizationError.
func (e AuthorizationError) Error() string {
	return e.message
}

// NewAuthorizationError returns a new error indicating that the caller isn't authorized.
func NewAuthorizationError(formatString string, a ...interface{}) AuthorizationError {
	return AuthorizationError{message: fmt.Sprintf(formatString, a...)}
}

// ListError indicates that the due quiet hour blocks could not be listed, which aborts a pass.
type ListError struct {
	message string
}

// Error returns the error message for a ListError.
func (e ListError) Error() string {
	return e.message
}

// NewListError returns a new error indicating that the due blocks could not be listed.
func NewListError(formatString string, a ...interface{}) ListError {
	return ListError{message: fmt.Sprintf(formatString, a...)}
}

// BadRequestError indicates that a request was malformed.
type BadRequestError struct {
	message string
}

// Error returns the error message for a BadRequestError.
func (e BadRequestError) Error() string {
	return e.message
}

// NewBadRequestError returns a new error indicating that the request was malformed.
func NewBadRequestError(formatString string, a ...interface{}) BadRequestError {
	return BadRequestError{message: fmt.Sprintf(formatString, a...)}
}

// statusFor returns the HTTP status code corresponding to an error.
func statusFor(err error) int {
	var authErr AuthorizationError
	var badRequestErr BadRequestError
	switch {
	case errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.As(err, &badRequestErr):
		return http.StatusBadRequest
	case errors.Is(err, db.ErrBlockNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError aborts the request with a JSON error body.
func respondError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error()})
}
