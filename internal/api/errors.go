package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/studydeck/internal/api/shared"
	"github.com/phrazzld/studydeck/internal/domain"
	"github.com/phrazzld/studydeck/internal/service/deck"
	"github.com/phrazzld/studydeck/internal/service/session"
	"github.com/phrazzld/studydeck/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, deck.ErrCardNotFound),
		errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, session.ErrAlreadyGraded),
		errors.Is(err, session.ErrNotIdle),
		errors.Is(err, session.ErrNotActive),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, session.ErrNotRevealed):
		return http.StatusPreconditionFailed

	case errors.Is(err, domain.ErrInvalidGrade),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, shared.ErrEmptyBody),
		errors.Is(err, shared.ErrMalformedBody),
		errors.As(err, &validationErrs):
		return http.StatusBadRequest

	case errors.Is(err, session.ErrNoCardsDue):
		return http.StatusNoContent

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErrs validator.ValidationErrors
	switch {
	case errors.Is(err, deck.ErrCardNotFound):
		return "Card not found"
	case errors.Is(err, session.ErrSessionNotFound):
		return "Session not found"
	case errors.Is(err, session.ErrAlreadyGraded):
		return "Card already graded in this session"
	case errors.Is(err, session.ErrNotRevealed):
		return "Card must be revealed before grading"
	case errors.Is(err, session.ErrNotActive):
		return "Session is not active"
	case errors.Is(err, session.ErrNotIdle):
		return "Session already started"
	case errors.Is(err, domain.ErrInvalidGrade):
		return "Quality must be between 0 and 5"
	case errors.Is(err, session.ErrInvalidPosition):
		return "Position is outside the session"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID format"
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.Is(err, shared.ErrMalformedBody):
		return "Request body is not valid JSON"
	case errors.As(err, &validationErrs):
		return SanitizeValidationError(err)
	case errors.Is(err, store.ErrInvalidEntity), errors.Is(err, domain.ErrValidation):
		return "Invalid entity data"
	case errors.Is(err, store.ErrDuplicate):
		return "Entity already exists"
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator errors into a short message naming
// the first failing field.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "Validation error"
	}

	fe := validationErrs[0]
	return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), getValidationTagMessage(fe.Tag()))
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte":
		return "too small"
	case "max", "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the status and safe message for err. A non-empty
// message overrides the mapped one for server errors only.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	safe := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && message != "" {
		safe = message
	}
	shared.RespondWithErrorAndLog(w, r, status, safe, err)
}
