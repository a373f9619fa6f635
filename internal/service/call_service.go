package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/spec-kit/haf/internal/domain"
	"github.com/spec-kit/haf/internal/portal"
	"github.com/spec-kit/haf/internal/repository"
)

// Processor runs the portal procedure for a call.
type Processor interface {
	Process(ctx context.Context, session portal.Session, call domain.CallRecord) (domain.LogEntry, error)
}

// Recorder persists finished runs.
type Recorder interface {
	Register(ctx context.Context, entry domain.LogEntry) error
	LoadLast(ctx context.Context) (domain.LogEntry, error)
}

// CallService moves the pending call through the engine and the log.
// Only one run may hold the browser session at a time.
type CallService struct {
	calls     repository.CallRepository
	templates repository.TemplateRepository
	engine    Processor
	recorder  Recorder
	logger    *zap.Logger
	running   atomic.Bool
}

// CallDependencies bundles collaborators for the call service.
type CallDependencies struct {
	CallRepo     repository.CallRepository
	TemplateRepo repository.TemplateRepository
	Engine       Processor
	Recorder     Recorder
	Logger       *zap.Logger
}

// NewCallService builds the service.
func NewCallService(deps CallDependencies) *CallService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CallService{
		calls:     deps.CallRepo,
		templates: deps.TemplateRepo,
		engine:    deps.Engine,
		recorder:  deps.Recorder,
		logger:    logger,
	}
}

// Pending returns the stored call.
func (s *CallService) Pending(ctx context.Context) (domain.CallRecord, error) {
	return s.calls.Load(ctx)
}

// Busy reports whether a run is in progress.
func (s *CallService) Busy() bool {
	return s.running.Load()
}

// Prepare validates call against its template and returns the normalised
// record with the template.
func (s *CallService) Prepare(ctx context.Context, call domain.CallRecord) (domain.CallRecord, domain.Template, error) {
	tmpl, err := s.templates.Get(ctx, call.CallType)
	var found *domain.Template
	switch {
	case err == nil:
		found = &tmpl
	case errors.Is(err, repository.ErrTemplateNotFound):
	default:
		return domain.CallRecord{}, domain.Template{}, err
	}
	if err := domain.ValidateCall(call, found); err != nil {
		return domain.CallRecord{}, domain.Template{}, err
	}
	return call.Normalize(tmpl), tmpl, nil
}

// Save validates call and stores it as the pending call.
func (s *CallService) Save(ctx context.Context, call domain.CallRecord) (domain.CallRecord, error) {
	normalized, _, err := s.Prepare(ctx, call)
	if err != nil {
		return domain.CallRecord{}, err
	}
	if err := s.calls.Save(ctx, normalized); err != nil {
		return domain.CallRecord{}, err
	}
	s.logger.Info("pending call saved", zap.String("call_type", normalized.CallType))
	return normalized, nil
}

// Register processes the pending call, records the entry and clears the call
// file. A failed run leaves the pending call in place.
func (s *CallService) Register(ctx context.Context, session portal.Session) (domain.LogEntry, error) {
	if !s.running.CompareAndSwap(false, true) {
		return domain.LogEntry{}, ErrBusy
	}
	defer s.running.Store(false)
	return s.register(ctx, session)
}

// Submit validates and saves call, then registers it.
func (s *CallService) Submit(ctx context.Context, session portal.Session, call domain.CallRecord) (domain.LogEntry, error) {
	if !s.running.CompareAndSwap(false, true) {
		return domain.LogEntry{}, ErrBusy
	}
	defer s.running.Store(false)

	if _, err := s.Save(ctx, call); err != nil {
		return domain.LogEntry{}, err
	}
	return s.register(ctx, session)
}

// LastEntry returns the most recently registered entry.
func (s *CallService) LastEntry(ctx context.Context) (domain.LogEntry, error) {
	return s.recorder.LoadLast(ctx)
}

func (s *CallService) register(ctx context.Context, session portal.Session) (domain.LogEntry, error) {
	call, err := s.calls.Load(ctx)
	if err != nil {
		return domain.LogEntry{}, err
	}
	if call.IsBlank() {
		return domain.LogEntry{}, ErrNoPendingCall
	}

	entry, err := s.engine.Process(ctx, session, call)
	if err != nil {
		return domain.LogEntry{}, err
	}
	if err := s.recorder.Register(ctx, entry); err != nil {
		return entry, fmt.Errorf("ticket %s done but not logged: %w", entry.TicketID, err)
	}
	if err := s.calls.Clear(ctx); err != nil {
		return entry, fmt.Errorf("clear call: %w", err)
	}
	return entry, nil
}
