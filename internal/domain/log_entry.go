package domain

import "time"

// LogKind records what a workflow run did to the remote ticket.
type LogKind string

const (
	LogCreated   LogKind = "created"
	LogClosed    LogKind = "closed"
	LogEscalated LogKind = "escalated"
	LogInvalid   LogKind = "invalid"
)

// ParseLogKind maps a stored kind back to its constant, LogInvalid when unknown.
func ParseLogKind(s string) LogKind {
	switch LogKind(s) {
	case LogCreated, LogClosed, LogEscalated:
		return LogKind(s)
	}
	return LogInvalid
}

// Label is the capitalised word used in the text log.
func (k LogKind) Label() string {
	switch k {
	case LogCreated:
		return "Created"
	case LogClosed:
		return "Closed"
	case LogEscalated:
		return "Escalated"
	}
	return "Invalid"
}

// KindFor returns the kind a successful run of p produces.
func KindFor(p ProcessType) LogKind {
	switch p {
	case ProcessOpen:
		return LogCreated
	case ProcessClose:
		return LogClosed
	case ProcessEscalate:
		return LogEscalated
	}
	return LogInvalid
}

// LogEntry is the record of one completed workflow run.
type LogEntry struct {
	ID              string
	Kind            LogKind
	TicketID        string
	Timestamp       time.Time
	Call            CallRecord
	Team            string
	Attachments     []string
	HostnameApplies bool
}
