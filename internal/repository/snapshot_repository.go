package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spec-kit/haf/internal/domain"
)

// ErrNoSnapshot is returned when no entry has been stored yet.
var ErrNoSnapshot = errors.New("no snapshot stored")

// SnapshotRepository keeps a copy of the most recent log entry.
type SnapshotRepository interface {
	Save(ctx context.Context, entry domain.LogEntry) error
	Load(ctx context.Context) (domain.LogEntry, error)
}

type snapshotTicket struct {
	EntryID         string   `json:"Entry_ID"`
	Time            string   `json:"Time"`
	ProcessType     string   `json:"Process_Type"`
	ID              string   `json:"ID"`
	TicketType      string   `json:"Ticket_Type"`
	Solution        int      `json:"Solution"`
	Variable        string   `json:"Variable"`
	Team            string   `json:"Team"`
	Attachments     []string `json:"Attachments"`
	HostnameApplies bool     `json:"Hostname_Applies"`
}

type snapshotUser struct {
	UserID   string `json:"User_ID"`
	Contact  string `json:"Contact"`
	Hostname string `json:"Hostname"`
}

type snapshotLog struct {
	Ticket snapshotTicket `json:"Ticket_Data"`
	User   snapshotUser   `json:"User_Data"`
}

type snapshotFile struct {
	Latest snapshotLog `json:"Latest_Log"`
}

type snapshotRepository struct {
	path string
}

// NewSnapshotRepository instantiates repository.
func NewSnapshotRepository(path string) SnapshotRepository {
	return &snapshotRepository{path: path}
}

func (r *snapshotRepository) Save(ctx context.Context, entry domain.LogEntry) error {
	file := snapshotFile{Latest: snapshotLog{
		Ticket: snapshotTicket{
			EntryID:         entry.ID,
			Time:            entry.Timestamp.Format(time.RFC3339),
			ProcessType:     string(entry.Kind),
			ID:              entry.TicketID,
			TicketType:      entry.Call.CallType,
			Solution:        entry.Call.Solution,
			Variable:        entry.Call.Variable,
			Team:            entry.Team,
			Attachments:     entry.Attachments,
			HostnameApplies: entry.HostnameApplies,
		},
		User: snapshotUser{
			UserID:   entry.Call.UserID,
			Contact:  entry.Call.Contact,
			Hostname: entry.Call.Hostname,
		},
	}}
	if err := writeJSON(r.path, file); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load rehydrates the stored entry. An unknown kind loads as domain.LogInvalid.
func (r *snapshotRepository) Load(ctx context.Context) (domain.LogEntry, error) {
	var file snapshotFile
	if err := readJSON(r.path, &file); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.LogEntry{}, ErrNoSnapshot
		}
		return domain.LogEntry{}, fmt.Errorf("load snapshot: %w", err)
	}

	ticket, user := file.Latest.Ticket, file.Latest.User
	entry := domain.LogEntry{
		ID:       ticket.EntryID,
		Kind:     domain.ParseLogKind(ticket.ProcessType),
		TicketID: ticket.ID,
		Call: domain.CallRecord{
			UserID:   user.UserID,
			Contact:  user.Contact,
			Hostname: user.Hostname,
			CallType: ticket.TicketType,
			Solution: ticket.Solution,
			Variable: ticket.Variable,
		},
		Team:            ticket.Team,
		Attachments:     ticket.Attachments,
		HostnameApplies: ticket.HostnameApplies,
	}
	if ticket.Time != "" {
		ts, err := time.Parse(time.RFC3339, ticket.Time)
		if err != nil {
			return domain.LogEntry{}, fmt.Errorf("load snapshot: invalid time %q", ticket.Time)
		}
		entry.Timestamp = ts
	}
	return entry, nil
}
