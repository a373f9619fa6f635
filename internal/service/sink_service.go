package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/haf/internal/domain"
	"github.com/spec-kit/haf/internal/events"
	"github.com/spec-kit/haf/internal/kafka"
	"github.com/spec-kit/haf/internal/repository"
)

// SinkService copies registered entries to the optional external stores.
type SinkService struct {
	dispatcher events.Dispatcher
	archive    repository.ArchiveRepository
	recent     repository.RecentRepository
	producer   kafka.EventProducer
	logger     *zap.Logger
}

// SinkDependencies bundles the sinks; nil members are skipped.
type SinkDependencies struct {
	Dispatcher  events.Dispatcher
	ArchiveRepo repository.ArchiveRepository
	RecentRepo  repository.RecentRepository
	Producer    kafka.EventProducer
	Logger      *zap.Logger
}

// NewSinkService creates the service.
func NewSinkService(deps SinkDependencies) *SinkService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SinkService{
		dispatcher: deps.Dispatcher,
		archive:    deps.ArchiveRepo,
		recent:     deps.RecentRepo,
		producer:   deps.Producer,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (s *SinkService) RegisterHandlers() {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Subscribe(events.EventTicketRegistered, s.handleTicketRegistered)
	s.dispatcher.Subscribe(events.EventRunFailed, s.handleRunFailed)
}

// Recent lists the newest entries from Redis, or from the archive when Redis
// is not configured.
func (s *SinkService) Recent(ctx context.Context, limit int) ([]domain.LogEntry, error) {
	switch {
	case s.recent != nil:
		return s.recent.List(ctx, limit)
	case s.archive != nil:
		return s.archive.List(ctx, limit, 0)
	}
	return nil, nil
}

// ticketMessage is the Kafka representation of a registered entry.
type ticketMessage struct {
	Event     events.EventType `json:"event"`
	EntryID   string           `json:"entry_id"`
	Kind      string           `json:"kind"`
	TicketID  string           `json:"ticket_id"`
	CallType  string           `json:"call_type"`
	UserID    string           `json:"user_id"`
	Team      string           `json:"team,omitempty"`
	Solution  *int             `json:"solution,omitempty"`
	Counter   int              `json:"counter"`
	Timestamp time.Time        `json:"timestamp"`
}

func (s *SinkService) handleTicketRegistered(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketRegisteredPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	entry := payload.Entry

	var errs []error
	if s.archive != nil {
		if err := s.archive.Insert(ctx, entry); err != nil {
			errs = append(errs, fmt.Errorf("archive: %w", err))
		}
	}
	if s.recent != nil {
		if err := s.recent.Push(ctx, entry); err != nil {
			errs = append(errs, fmt.Errorf("recent: %w", err))
		}
	}
	if s.producer != nil && s.producer.Enabled() {
		msg := ticketMessage{
			Event:     event.Type,
			EntryID:   entry.ID,
			Kind:      string(entry.Kind),
			TicketID:  entry.TicketID,
			CallType:  entry.Call.CallType,
			UserID:    entry.Call.UserID,
			Team:      entry.Team,
			Counter:   payload.Counter,
			Timestamp: entry.Timestamp,
		}
		if entry.Kind == domain.LogClosed {
			solution := entry.Call.Solution
			msg.Solution = &solution
		}
		if err := s.producer.Send(ctx, entry.TicketID, msg); err != nil {
			errs = append(errs, err)
		}
	}

	s.logger.Debug("ticket sinks notified", zap.String("ticket_id", entry.TicketID), zap.Int("failures", len(errs)))
	return errors.Join(errs...)
}

func (s *SinkService) handleRunFailed(ctx context.Context, event events.Event) error {
	if s.producer == nil || !s.producer.Enabled() {
		return nil
	}
	payload, ok := event.Payload.(events.RunFailedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	return s.producer.Send(ctx, payload.RunID, struct {
		Event events.EventType `json:"event"`
		events.RunFailedPayload
		Timestamp time.Time `json:"timestamp"`
	}{event.Type, payload, event.Timestamp})
}
