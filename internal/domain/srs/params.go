package srs

import (
	"errors"
	"fmt"

	"github.com/phrazzld/studydeck/internal/domain"
)

// ErrInvalidParams is returned when a Params value would break the scheduler's invariants.
var ErrInvalidParams = errors.New("invalid SRS parameters")

// Params defines all configurable parameters for the SRS algorithm
type Params struct {
	// Core limits
	MinEaseFactor float64

	// Grades at or above PassingQuality extend the streak; lower grades are lapses
	PassingQuality domain.Quality

	// Graduation steps for the first two passing reviews of a streak
	FirstInterval  int
	SecondInterval int

	// Interval used after a lapse
	LapseInterval int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance
type ParamsConfig struct {
	MinEaseFactor  float64
	PassingQuality int
	FirstInterval  int
	SecondInterval int
	LapseInterval  int
}

// NewDefaultParams creates a new Params instance with the classic SM-2 values
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:  domain.MinEaseFactor,
		PassingQuality: domain.DefaultPassingQuality,
		FirstInterval:  1,
		SecondInterval: 6,
		LapseInterval:  1,
	}
}

// NewParams creates a new Params instance with custom configuration.
// Zero values in config keep the defaults.
func NewParams(config ParamsConfig) (*Params, error) {
	params := NewDefaultParams()

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.PassingQuality > 0 {
		params.PassingQuality = domain.Quality(config.PassingQuality)
	}
	if config.FirstInterval > 0 {
		params.FirstInterval = config.FirstInterval
	}
	if config.SecondInterval > 0 {
		params.SecondInterval = config.SecondInterval
	}
	if config.LapseInterval > 0 {
		params.LapseInterval = config.LapseInterval
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}
	return params, nil
}

// Validate checks that the parameters keep every card invariant intact.
func (p *Params) Validate() error {
	if p.MinEaseFactor < domain.MinEaseFactor {
		return fmt.Errorf("%w: min ease factor %.2f is below %.2f",
			ErrInvalidParams, p.MinEaseFactor, domain.MinEaseFactor)
	}
	if p.PassingQuality <= domain.MinQuality || p.PassingQuality > domain.MaxQuality {
		return fmt.Errorf("%w: passing quality %d is outside (0,5]", ErrInvalidParams, p.PassingQuality)
	}
	if p.FirstInterval < 1 || p.SecondInterval < p.FirstInterval {
		return fmt.Errorf("%w: graduation intervals must satisfy 1 <= first <= second",
			ErrInvalidParams)
	}
	if p.LapseInterval < 1 {
		return fmt.Errorf("%w: lapse interval must be at least 1 day", ErrInvalidParams)
	}
	return nil
}
