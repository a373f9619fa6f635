package worker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/haf/internal/domain"
	"github.com/spec-kit/haf/internal/events"
	"github.com/spec-kit/haf/internal/portal"
	"github.com/spec-kit/haf/internal/service"
)

// State is the lifecycle of the latest run.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// CallRunner validates and processes calls.
type CallRunner interface {
	Prepare(ctx context.Context, call domain.CallRecord) (domain.CallRecord, domain.Template, error)
	Submit(ctx context.Context, session portal.Session, call domain.CallRecord) (domain.LogEntry, error)
}

// Status describes the latest run.
type Status struct {
	RunID      string           `json:"run_id,omitempty"`
	State      State            `json:"state"`
	CallType   string           `json:"call_type,omitempty"`
	StartedAt  time.Time        `json:"started_at,omitempty"`
	FinishedAt time.Time        `json:"finished_at,omitempty"`
	Entry      *domain.LogEntry `json:"-"`
	Err        error            `json:"-"`
}

// TicketWorker runs one call at a time against the shared browser session.
type TicketWorker struct {
	base       context.Context
	runner     CallRunner
	session    portal.Session
	dispatcher events.Dispatcher
	logger     *zap.Logger

	mu     sync.Mutex
	status Status
	wg     sync.WaitGroup
}

// NewTicketWorker builds a worker. Runs use base as their context so they
// outlive the request that started them.
func NewTicketWorker(base context.Context, runner CallRunner, session portal.Session, dispatcher events.Dispatcher, logger *zap.Logger) *TicketWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketWorker{
		base:       base,
		runner:     runner,
		session:    session,
		dispatcher: dispatcher,
		logger:     logger,
		status:     Status{State: StateIdle},
	}
}

// Submit validates call and starts a run for it. It returns service.ErrBusy
// while another run holds the session; calls are never queued.
func (w *TicketWorker) Submit(ctx context.Context, call domain.CallRecord) (string, error) {
	if _, _, err := w.runner.Prepare(ctx, call); err != nil {
		return "", err
	}

	w.mu.Lock()
	if w.status.State == StateRunning {
		w.mu.Unlock()
		return "", service.ErrBusy
	}
	runID := uuid.NewString()
	w.status = Status{
		RunID:     runID,
		State:     StateRunning,
		CallType:  call.CallType,
		StartedAt: time.Now().UTC(),
	}
	w.wg.Add(1)
	w.mu.Unlock()

	go w.run(runID, call)
	return runID, nil
}

// Status returns a copy of the latest run status.
func (w *TicketWorker) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Wait blocks until the current run, if any, has finished.
func (w *TicketWorker) Wait() {
	w.wg.Wait()
}

func (w *TicketWorker) run(runID string, call domain.CallRecord) {
	defer w.wg.Done()

	logger := w.logger.With(zap.String("run_id", runID), zap.String("call_type", call.CallType))
	logger.Info("ticket run started")

	entry, err := w.runner.Submit(w.base, w.session, call)

	w.mu.Lock()
	w.status.FinishedAt = time.Now().UTC()
	if err != nil {
		w.status.State = StateFailed
		w.status.Err = err
	} else {
		w.status.State = StateSucceeded
		w.status.Entry = &entry
	}
	w.mu.Unlock()

	if err != nil {
		logger.Warn("ticket run failed", zap.Error(err))
		if w.dispatcher != nil {
			_ = w.dispatcher.Publish(w.base, events.Event{
				ID:        runID,
				Type:      events.EventRunFailed,
				Timestamp: time.Now().UTC(),
				Payload: events.RunFailedPayload{
					RunID:    runID,
					CallType: call.CallType,
					Error:    err.Error(),
				},
			})
		}
		return
	}
	logger.Info("ticket run finished", zap.String("ticket_id", entry.TicketID))
}
