package session

import (
	"errors"

	"github.com/claude/liftlog/internal/storage"
)

var (
	// ErrInvalidState is returned when an operation is attempted from the wrong state.
	// The draft is never modified in that case.
	ErrInvalidState = errors.New("invalid session state")

	// ErrNotFound is returned when an operation references an unknown exercise,
	// mesocycle, split day or set. It matches storage.ErrNotFound.
	ErrNotFound = storage.ErrNotFound

	// ErrInvalidFeedback is returned by Finish when a feedback rating is out of range.
	ErrInvalidFeedback = errors.New("invalid workout feedback")
)
