package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/adanyl0v/go-task-manager/internal/services"
)

var (
	errInvalidRequestBody = errors.New("invalid request body")
	errMissingActor       = errors.New("no actor in context")
)

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, gin.H{"error": err.Message})
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

func newUnprocessableEntityError(message string) apiError {
	return newAPIError(http.StatusUnprocessableEntity, message)
}

// newBindError tells a payload that failed its binding rules (422) from
// one that could not be decoded (400).
func newBindError(err error) apiError {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return newUnprocessableEntityError(validationErrs.Error())
	}
	return newBadRequestError(errInvalidRequestBody.Error())
}

// newServiceError maps a service error to its response. Anything outside
// the known categories is an internal error and its text is not exposed.
func newServiceError(err error) apiError {
	switch {
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrAlreadyExists):
		return newUnprocessableEntityError(err.Error())
	case errors.Is(err, services.ErrNotFound):
		return newAPIError(http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrConflict):
		return newAPIError(http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrForbidden):
		return newAPIError(http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		return newUnauthorizedError(services.ErrInvalidCredentials.Error())
	default:
		return newStatusTextError(http.StatusInternalServerError)
	}
}
