// Package ticketlog records finished workflow runs: a text block appended to
// the log file, the settings counter and a snapshot of the latest entry.
package ticketlog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/haf/internal/domain"
	"github.com/spec-kit/haf/internal/events"
	"github.com/spec-kit/haf/internal/repository"
	"github.com/spec-kit/haf/internal/settings"
)

// ErrNoPriorEntry is returned by LoadLast before any entry was registered.
var ErrNoPriorEntry = errors.New("no previous logs registered")

// DefaultTeam is reported for templates that do not name a team.
const DefaultTeam = "VE.INFRA.BR.SERVICE DESK"

// Divider separates blocks in the text log.
var Divider = strings.Repeat("-", 70)

const (
	timeLayout   = "02/01/2006 15:04:05"
	doesNotApply = "Does not apply"
)

// Counter is the part of the settings store the logger needs.
type Counter interface {
	Load() (settings.Settings, error)
	IncrementCounter() (int, error)
}

// Options tunes a Logger.
type Options struct {
	DefaultTeam string
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// Logger persists finished runs.
type Logger struct {
	path        string
	counter     Counter
	snapshots   repository.SnapshotRepository
	defaultTeam string
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	mu          sync.Mutex
}

// New returns a logger appending to the text log at path.
func New(path string, counter Counter, snapshots repository.SnapshotRepository, opts Options) *Logger {
	if opts.DefaultTeam == "" {
		opts.DefaultTeam = DefaultTeam
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Logger{
		path:        path,
		counter:     counter,
		snapshots:   snapshots,
		defaultTeam: opts.DefaultTeam,
		dispatcher:  opts.Dispatcher,
		logger:      opts.Logger,
	}
}

// Register appends entry to the text log, bumps the counter by one and
// replaces the snapshot, in that order. Subscribers of
// events.EventTicketRegistered are notified last; their failures are logged
// by the dispatcher.
func (l *Logger) Register(ctx context.Context, entry domain.LogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	block := Divider + "\n" + l.Format(entry) + Divider + "\n\n\n"
	if err := appendText(l.path, block); err != nil {
		return err
	}

	counter, err := l.counter.IncrementCounter()
	if err != nil {
		return fmt.Errorf("update log counter: %w", err)
	}
	if err := l.snapshots.Save(ctx, entry); err != nil {
		return err
	}

	l.logger.Info("ticket registered",
		zap.String("entry_id", entry.ID),
		zap.String("ticket_id", entry.TicketID),
		zap.String("kind", string(entry.Kind)),
		zap.Int("counter", counter),
	)

	if l.dispatcher != nil {
		_ = l.dispatcher.Publish(ctx, events.Event{
			ID:        entry.ID,
			Type:      events.EventTicketRegistered,
			TicketID:  entry.TicketID,
			Timestamp: entry.Timestamp,
			Payload:   events.TicketRegisteredPayload{Entry: entry, Counter: counter},
		})
	}
	return nil
}

// LoadLast returns the most recently registered entry.
func (l *Logger) LoadLast(ctx context.Context) (domain.LogEntry, error) {
	cfg, err := l.counter.Load()
	if err != nil {
		return domain.LogEntry{}, err
	}
	if cfg.Counter == 0 {
		return domain.LogEntry{}, ErrNoPriorEntry
	}

	entry, err := l.snapshots.Load(ctx)
	if errors.Is(err, repository.ErrNoSnapshot) {
		return domain.LogEntry{}, ErrNoPriorEntry
	}
	return entry, err
}

// Format renders entry as a text log block.
func (l *Logger) Format(entry domain.LogEntry) string {
	attachments := "None"
	if len(entry.Attachments) > 0 {
		attachments = strings.Join(entry.Attachments, ", ")
	}
	team := entry.Team
	if team == "" {
		team = l.defaultTeam
	}
	solution := doesNotApply
	if entry.Kind == domain.LogClosed {
		solution = strconv.Itoa(entry.Call.Solution)
	}
	hostname := doesNotApply
	if entry.HostnameApplies {
		hostname = entry.Call.Hostname
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", entry.Timestamp.Format(timeLayout))
	fmt.Fprintf(&b, "%s ticket number %s, details:\n", entry.Kind.Label(), entry.TicketID)
	fmt.Fprintf(&b, "\t- Ticket Type: %q\n", entry.Call.CallType)
	fmt.Fprintf(&b, "\t- Attachments: %s\n", attachments)
	fmt.Fprintf(&b, "\t- Designated Team: %s\n", team)
	fmt.Fprintf(&b, "\t- Solution Type: %s\n\n", solution)
	b.WriteString("User details:\n")
	fmt.Fprintf(&b, "\t- User ID: %s\n", entry.Call.UserID)
	fmt.Fprintf(&b, "\t- Contact Info: %s\n", entry.Call.Contact)
	fmt.Fprintf(&b, "\t- Hostname/IP: %s\n", hostname)
	return b.String()
}

func appendText(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return fmt.Errorf("append log: %w", err)
	}
	return f.Close()
}
