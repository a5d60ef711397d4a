package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/taskapp/internal/api/shared"
	"github.com/phrazzld/taskapp/internal/domain"
	"github.com/phrazzld/taskapp/internal/service"
	"github.com/phrazzld/taskapp/internal/service/auth"
	"github.com/phrazzld/taskapp/internal/store"
)

// Fixed client-facing messages.
const (
	msgInvalidID         = "Invalid id"
	msgInvalidTaskUpdate = "Invalid Updates"
	msgInvalidUserUpdate = "Invalid updates!"
	msgUnableToLogin     = "Unable to login"
	msgInvalidRequest    = "Invalid request format"
	msgAvatarRequired    = "Please upload an image"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Ownership mismatches surface as not found.
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, domain.ErrInvalidID):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-safe message for err. Validation
// errors only describe the submitted input and are returned as they are.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return validationErr.Error()
	case errors.Is(err, service.ErrUnauthenticated):
		return "Please authenticate"
	case errors.Is(err, service.ErrInvalidCredentials):
		return msgUnableToLogin
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, store.ErrImageNotFound):
		return "Image not found"
	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns a validator.ValidationErrors message into a
// short description naming the field and the failed rule.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Example: "Key: 'RegisterRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := strings.ToLower(fieldParts[1])
				if len(fieldParts) >= 5 {
					return fmt.Sprintf("invalid %s: %s", field, getValidationTagMessage(fieldParts[3]))
				}
				return "invalid " + field
			}
		}
	}

	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "is required"
	case "email":
		return "is not a valid address"
	case "min", "gte":
		return "is too small"
	case "max", "lte":
		return "is too large"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes a JSON error response for err, deriving the status
// from MapErrorToStatusCode. An empty message uses GetSafeErrorMessage.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), message, err)
}
