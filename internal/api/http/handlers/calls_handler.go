package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/haf/internal/api/dto"
	"github.com/spec-kit/haf/internal/domain"
	"github.com/spec-kit/haf/internal/service"
	"github.com/spec-kit/haf/internal/worker"
	apperrors "github.com/spec-kit/haf/pkg/util/errorutil"
)

// CallWorker runs submitted calls one at a time.
type CallWorker interface {
	Submit(ctx context.Context, call domain.CallRecord) (string, error)
	Status() worker.Status
}

// PendingSource reads the stored pending call.
type PendingSource interface {
	Pending(ctx context.Context) (domain.CallRecord, error)
}

// CallsHandler submits calls and reports runs.
type CallsHandler struct {
	worker  CallWorker
	pending PendingSource
}

// NewCallsHandler constructs handler.
func NewCallsHandler(runner CallWorker, pending PendingSource) *CallsHandler {
	return &CallsHandler{worker: runner, pending: pending}
}

// Submit POST /calls.
func (h *CallsHandler) Submit(c *fiber.Ctx) error {
	var req dto.CallRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	runID, err := h.worker.Submit(c.UserContext(), req.Record())
	if errors.Is(err, service.ErrBusy) {
		return apperrors.NewConflict(err.Error(), map[string]any{"run_id": h.worker.Status().RunID})
	}
	if err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": dto.RunAccepted{RunID: runID, State: string(worker.StateRunning)}})
}

// Current GET /calls/current.
func (h *CallsHandler) Current(c *fiber.Ctx) error {
	status := h.worker.Status()
	resp := dto.RunStatus{
		RunID:    status.RunID,
		State:    string(status.State),
		CallType: status.CallType,
	}
	if !status.StartedAt.IsZero() {
		resp.StartedAt = &status.StartedAt
	}
	if !status.FinishedAt.IsZero() {
		resp.FinishedAt = &status.FinishedAt
	}
	if status.Entry != nil {
		entry := dto.NewLogEntryResponse(*status.Entry)
		resp.Entry = &entry
	}
	if status.Err != nil {
		de := apperrors.ToDomainError(status.Err)
		resp.Error = &dto.RunError{Code: de.Code, Message: de.Message}
	}

	if h.pending != nil {
		call, err := h.pending.Pending(c.UserContext())
		if err != nil {
			return err
		}
		if !call.IsBlank() {
			pending := dto.NewCallResponse(call)
			resp.Pending = &pending
		}
	}
	return c.JSON(fiber.Map{"data": resp})
}
