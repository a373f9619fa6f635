package workflow

import "errors"

var (
	// ErrInvalidTemplate means the call type has no template.
	ErrInvalidTemplate = errors.New("invalid ticket type")
	// ErrInvalidSolutionIndex means a close call picks an answer the template does not have.
	ErrInvalidSolutionIndex = errors.New("invalid solution id")
	// ErrRetriesExhausted means every open attempt produced a non-numeric ticket id.
	ErrRetriesExhausted = errors.New("ticket id was not numeric after every attempt, restart HAF and try again")
)
