package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/haf/internal/domain"
	"github.com/spec-kit/haf/internal/repository"
	"github.com/spec-kit/haf/internal/ticketlog"
	"github.com/spec-kit/haf/internal/workflow"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// detailer is implemented by errors carrying per-field details.
type detailer interface {
	Details() map[string]any
}

// ToDomainError converts generic errors to DomainError. Workflow failures
// keep the operator-facing codes used by the console.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return &DomainError{Code: http.StatusText(fiberErr.Code), Message: fiberErr.Message, HTTPStatus: fiberErr.Code}
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCall):
		de := &DomainError{Code: "VALIDATION_FAILED", Message: "invalid call", HTTPStatus: http.StatusBadRequest, Err: err}
		var d detailer
		if errors.As(err, &d) {
			de.Details = d.Details()
		}
		return de
	case errors.Is(err, domain.ErrInvalidTemplateDefinition):
		return &DomainError{Code: "VALIDATION_FAILED", Message: err.Error(), HTTPStatus: http.StatusBadRequest}
	case errors.Is(err, workflow.ErrInvalidTemplate):
		return &DomainError{Code: "ERROR_01", Message: "invalid ticket type", HTTPStatus: http.StatusUnprocessableEntity, Err: err}
	case errors.Is(err, workflow.ErrInvalidSolutionIndex):
		return &DomainError{Code: "ERROR_02", Message: "invalid solution id", HTTPStatus: http.StatusUnprocessableEntity, Err: err}
	case errors.Is(err, ticketlog.ErrNoPriorEntry):
		return &DomainError{Code: "ERROR_03", Message: "no previous logs registered", HTTPStatus: http.StatusNotFound}
	case errors.Is(err, workflow.ErrRetriesExhausted):
		return &DomainError{Code: "ERROR_04", Message: workflow.ErrRetriesExhausted.Error(), HTTPStatus: http.StatusBadGateway, Err: err}
	case errors.Is(err, repository.ErrTemplateNotFound):
		return &DomainError{Code: "NOT_FOUND", Message: "template not found", HTTPStatus: http.StatusNotFound, Details: map[string]any{}}
	case errors.Is(err, pgx.ErrNoRows):
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}

	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
