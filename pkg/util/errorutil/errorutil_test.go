package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/haf/internal/domain"
	"github.com/spec-kit/haf/internal/repository"
	"github.com/spec-kit/haf/internal/ticketlog"
	"github.com/spec-kit/haf/internal/workflow"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"invalid template", fmt.Errorf("%w: %q", workflow.ErrInvalidTemplate, "x"), "ERROR_01", http.StatusUnprocessableEntity},
		{"invalid solution", workflow.ErrInvalidSolutionIndex, "ERROR_02", http.StatusUnprocessableEntity},
		{"no prior entry", ticketlog.ErrNoPriorEntry, "ERROR_03", http.StatusNotFound},
		{"retries", fmt.Errorf("open ticket: %w", workflow.ErrRetriesExhausted), "ERROR_04", http.StatusBadGateway},
		{"template missing", repository.ErrTemplateNotFound, "NOT_FOUND", http.StatusNotFound},
		{"fiber", fiber.NewError(http.StatusForbidden, "operator required"), "Forbidden", http.StatusForbidden},
		{"conflict", NewConflict("busy", nil), "CONFLICT", http.StatusConflict},
		{"unknown", errors.New("disk on fire"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := ToDomainError(tt.err)
			if de.Code != tt.code || de.HTTPStatus != tt.status {
				t.Errorf("expected %s/%d, got %s/%d", tt.code, tt.status, de.Code, de.HTTPStatus)
			}
		})
	}
}

func TestToDomainErrorCarriesFieldDetails(t *testing.T) {
	err := domain.ValidateCall(domain.CallRecord{UserID: "short", Contact: "12", CallType: "x"}, &domain.Template{ProcessType: domain.ProcessOpen, Flow: domain.FlowMFA})
	de := ToDomainError(err)
	if de.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", de.HTTPStatus)
	}
	if _, ok := de.Details["user_id"]; !ok {
		t.Errorf("expected user_id detail, got %v", de.Details)
	}
	if _, ok := de.Details["contact"]; !ok {
		t.Errorf("expected contact detail, got %v", de.Details)
	}
}
