package deck

import (
	"errors"
	"fmt"

	"github.com/phrazzld/studydeck/internal/store"
)

var (
	// ErrCardNotFound is returned when a card ID is not in the repository.
	// It is the store's sentinel, so errors.Is matches either name.
	ErrCardNotFound = store.ErrCardNotFound

	// ErrDuplicateCard is returned by Add when a card ID is already present.
	ErrDuplicateCard = fmt.Errorf("%w: card already in deck", store.ErrDuplicate)

	// ErrInvalidSeed is returned when a seed file cannot be turned into cards.
	ErrInvalidSeed = errors.New("invalid seed file")
)

// ServiceError wraps errors from the repository with the operation that failed.
// Consumers can tell repository failures apart with errors.As.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "apply_grade", "load")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

func newServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{Operation: operation, Message: message, Err: err}
}
