package dto

import (
	"time"

	"github.com/spec-kit/haf/internal/domain"
)

// CallRequest payload for POST /calls.
type CallRequest struct {
	UserID   string `json:"user_id"`
	Contact  string `json:"contact"`
	Hostname string `json:"hostname"`
	CallType string `json:"call_type"`
	Solution int    `json:"solution"`
	Variable string `json:"variable"`
}

// Record converts the payload to a call record.
func (r CallRequest) Record() domain.CallRecord {
	return domain.CallRecord{
		UserID:   r.UserID,
		Contact:  r.Contact,
		Hostname: r.Hostname,
		CallType: r.CallType,
		Solution: r.Solution,
		Variable: r.Variable,
	}
}

// CallResponse renders a call record.
type CallResponse struct {
	UserID   string `json:"user_id"`
	Contact  string `json:"contact"`
	Hostname string `json:"hostname"`
	CallType string `json:"call_type"`
	Solution int    `json:"solution"`
	Variable string `json:"variable"`
}

// NewCallResponse maps a call record.
func NewCallResponse(call domain.CallRecord) CallResponse {
	return CallResponse{
		UserID:   call.UserID,
		Contact:  call.Contact,
		Hostname: call.Hostname,
		CallType: call.CallType,
		Solution: call.Solution,
		Variable: call.Variable,
	}
}

// RunAccepted is returned when a call was handed to the worker.
type RunAccepted struct {
	RunID string `json:"run_id"`
	State string `json:"state"`
}

// RunError describes why a run failed.
type RunError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RunStatus reports the worker state.
type RunStatus struct {
	RunID      string            `json:"run_id,omitempty"`
	State      string            `json:"state"`
	CallType   string            `json:"call_type,omitempty"`
	StartedAt  *time.Time        `json:"started_at,omitempty"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
	Entry      *LogEntryResponse `json:"entry,omitempty"`
	Error      *RunError         `json:"error,omitempty"`
	Pending    *CallResponse     `json:"pending,omitempty"`
}

// LogEntryResponse renders a registered entry.
type LogEntryResponse struct {
	ID              string       `json:"id"`
	Kind            string       `json:"kind"`
	Label           string       `json:"label"`
	TicketID        string       `json:"ticket_id"`
	Timestamp       time.Time    `json:"timestamp"`
	Call            CallResponse `json:"call"`
	Team            string       `json:"team,omitempty"`
	Attachments     []string     `json:"attachments,omitempty"`
	HostnameApplies bool         `json:"hostname_applies"`
}

// NewLogEntryResponse maps a log entry.
func NewLogEntryResponse(entry domain.LogEntry) LogEntryResponse {
	return LogEntryResponse{
		ID:              entry.ID,
		Kind:            string(entry.Kind),
		Label:           entry.Kind.Label(),
		TicketID:        entry.TicketID,
		Timestamp:       entry.Timestamp,
		Call:            NewCallResponse(entry.Call),
		Team:            entry.Team,
		Attachments:     entry.Attachments,
		HostnameApplies: entry.HostnameApplies,
	}
}
