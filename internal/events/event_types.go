package events

import (
	"time"

	"github.com/spec-kit/haf/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketRegistered EventType = "ticket.registered"
	EventRunFailed        EventType = "ticket.run_failed"
)

// Event is published after a workflow run settles.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketRegisteredPayload carries the registered entry and the log counter
// it produced.
type TicketRegisteredPayload struct {
	Entry   domain.LogEntry `json:"-"`
	Counter int             `json:"counter"`
}

// RunFailedPayload describes a run that produced no entry.
type RunFailedPayload struct {
	RunID    string `json:"run_id"`
	CallType string `json:"call_type"`
	Error    string `json:"error"`
}
