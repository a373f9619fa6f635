package ticketlog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spec-kit/haf/internal/domain"
	"github.com/spec-kit/haf/internal/events"
	"github.com/spec-kit/haf/internal/repository"
	"github.com/spec-kit/haf/internal/settings"
)

type fixture struct {
	logger   *Logger
	settings *settings.Store
	logPath  string
}

func newFixture(t *testing.T, opts Options) fixture {
	t.Helper()
	dir := t.TempDir()
	store := settings.NewStore(filepath.Join(dir, "config.ini"))
	logPath := filepath.Join(dir, "log", "log.txt")
	snapshots := repository.NewSnapshotRepository(filepath.Join(dir, "log", "persistent.json"))
	return fixture{
		logger:   New(logPath, store, snapshots, opts),
		settings: store,
		logPath:  logPath,
	}
}

func sampleEntry(ticketID string, kind domain.LogKind) domain.LogEntry {
	return domain.LogEntry{
		Kind:      kind,
		TicketID:  ticketID,
		Timestamp: time.Date(2024, 5, 17, 9, 30, 15, 0, time.UTC),
		Call: domain.CallRecord{
			UserID:   "U123456789",
			Contact:  "(11) 9 8765 - 4321",
			Hostname: "PC-01",
			CallType: "password",
			Solution: 1,
		},
		HostnameApplies: true,
	}
}

func TestLoadLastBeforeRegister(t *testing.T) {
	f := newFixture(t, Options{})
	if _, err := f.logger.LoadLast(context.Background()); !errors.Is(err, ErrNoPriorEntry) {
		t.Fatalf("expected ErrNoPriorEntry, got %v", err)
	}
}

func TestRegisterIncrementsCounterAndReplacesSnapshot(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	for i, id := range []string{"100", "101", "102"} {
		if err := f.logger.Register(ctx, sampleEntry(id, domain.LogCreated)); err != nil {
			t.Fatalf("Register(%s) failed: %v", id, err)
		}
		cfg, err := f.settings.Load()
		if err != nil {
			t.Fatalf("Load() failed: %v", err)
		}
		if cfg.Counter != i+1 {
			t.Errorf("expected counter %d, got %d", i+1, cfg.Counter)
		}
		last, err := f.logger.LoadLast(ctx)
		if err != nil {
			t.Fatalf("LoadLast() failed: %v", err)
		}
		if last.TicketID != id {
			t.Errorf("expected snapshot of %s, got %s", id, last.TicketID)
		}
	}

	raw, err := os.ReadFile(f.logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if n := strings.Count(string(raw), Divider+"\n"); n != 6 {
		t.Errorf("expected 6 dividers, got %d", n)
	}
	if !strings.HasSuffix(string(raw), Divider+"\n\n\n") {
		t.Error("expected each block to end with a divider and two blank lines")
	}
}

func TestFormat(t *testing.T) {
	f := newFixture(t, Options{})

	closed := sampleEntry("555", domain.LogClosed)
	closed.Attachments = []string{"a.pdf", "b.png"}
	got := f.logger.Format(closed)
	want := "17/05/2024 09:30:15\n" +
		"Closed ticket number 555, details:\n" +
		"\t- Ticket Type: \"password\"\n" +
		"\t- Attachments: a.pdf, b.png\n" +
		"\t- Designated Team: " + DefaultTeam + "\n" +
		"\t- Solution Type: 1\n\n" +
		"User details:\n" +
		"\t- User ID: U123456789\n" +
		"\t- Contact Info: (11) 9 8765 - 4321\n" +
		"\t- Hostname/IP: PC-01\n"
	if got != want {
		t.Errorf("unexpected block:\n%s\nwant:\n%s", got, want)
	}

	created := sampleEntry("556", domain.LogCreated)
	created.HostnameApplies = false
	created.Team = "NET"
	got = f.logger.Format(created)
	for _, line := range []string{
		"Created ticket number 556",
		"\t- Attachments: None\n",
		"\t- Designated Team: NET\n",
		"\t- Solution Type: Does not apply\n",
		"\t- Hostname/IP: Does not apply\n",
	} {
		if !strings.Contains(got, line) {
			t.Errorf("expected %q in:\n%s", line, got)
		}
	}
}

func TestRegisterPublishesEvent(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher(nil)
	var got []events.Event
	dispatcher.Subscribe(events.EventTicketRegistered, func(ctx context.Context, e events.Event) error {
		got = append(got, e)
		return errors.New("sink offline")
	})
	f := newFixture(t, Options{Dispatcher: dispatcher, DefaultTeam: "DESK"})

	if err := f.logger.Register(context.Background(), sampleEntry("9", domain.LogEscalated)); err != nil {
		t.Fatalf("Register() failed despite sink error: %v", err)
	}
	if len(got) != 1 || got[0].TicketID != "9" {
		t.Fatalf("unexpected events %+v", got)
	}
	payload, ok := got[0].Payload.(events.TicketRegisteredPayload)
	if !ok || payload.Counter != 1 || payload.Entry.ID == "" {
		t.Errorf("unexpected payload %+v", got[0].Payload)
	}
}
