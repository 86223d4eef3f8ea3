package session

import (
	"errors"
	"fmt"

	"github.com/phrazzld/studydeck/internal/domain"
)

var (
	// ErrNotRevealed is returned when a card is graded before its back side was shown.
	ErrNotRevealed = errors.New("card must be revealed before grading")

	// ErrAlreadyGraded is returned for a second grade of the same card in one session,
	// or for a grade aimed at a position other than the current one.
	ErrAlreadyGraded = errors.New("card already graded in this session")

	// ErrNoCardsDue is returned by Start when the snapshot would be empty.
	ErrNoCardsDue = errors.New("no cards due for review")

	// ErrNotActive is returned by commands that need an active session.
	ErrNotActive = errors.New("session is not active")

	// ErrNotIdle is returned by Start on a session that was already started.
	ErrNotIdle = errors.New("session already started")

	// ErrInvalidPosition is returned when a grade targets a position outside the snapshot.
	ErrInvalidPosition = fmt.Errorf("%w: position out of range", domain.ErrValidation)

	// ErrSessionNotFound is returned by the Manager for unknown session IDs.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidGrade aliases the domain error so callers can match either.
	ErrInvalidGrade = domain.ErrInvalidGrade
)
