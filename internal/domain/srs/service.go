package srs

import (
	"fmt"
	"time"

	"github.com/phrazzld/studydeck/internal/domain"
)

// ErrInvalidGrade is returned for qualities outside [0,5]. It is the same value as
// domain.ErrInvalidGrade so callers can check either.
var ErrInvalidGrade = domain.ErrInvalidGrade

// Service defines the interface for SRS algorithm operations
type Service interface {
	// NextState computes the schedule that follows grading state with quality q at now.
	// It has no side effects; the same inputs always produce the same output.
	NextState(state domain.SchedulingState, q domain.Quality, now time.Time) (domain.Schedule, error)

	// Params returns the parameters the service schedules with.
	Params() Params
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() (Service, error) {
	return NewServiceWithParams(NewDefaultParams())
}

// NewServiceWithParams creates a new SRS service with custom parameters
func NewServiceWithParams(params *Params) (Service, error) {
	if params == nil {
		return nil, fmt.Errorf("%w: params cannot be nil", ErrInvalidParams)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	// Copy so later changes to the caller's value cannot alter scheduling
	p := *params
	return &defaultService{params: &p}, nil
}

// NextState implements Service.NextState
func (s *defaultService) NextState(
	state domain.SchedulingState,
	q domain.Quality,
	now time.Time,
) (domain.Schedule, error) {
	if !q.Valid() {
		return domain.Schedule{}, fmt.Errorf("%w: got %d", ErrInvalidGrade, q)
	}

	return calculateNextSchedule(state, q, now, s.params), nil
}

// Params implements Service.Params
func (s *defaultService) Params() Params {
	return *s.params
}
