package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/spec-kit/haf/internal/domain"
	"github.com/spec-kit/haf/internal/events"
	"github.com/spec-kit/haf/internal/portal"
	"github.com/spec-kit/haf/internal/portal/portaltest"
	"github.com/spec-kit/haf/internal/service"
)

type fakeRunner struct {
	prepareErr error
	submitErr  error
	release    chan struct{}
}

func (f *fakeRunner) Prepare(ctx context.Context, call domain.CallRecord) (domain.CallRecord, domain.Template, error) {
	return call, domain.Template{}, f.prepareErr
}

func (f *fakeRunner) Submit(ctx context.Context, session portal.Session, call domain.CallRecord) (domain.LogEntry, error) {
	if f.release != nil {
		<-f.release
	}
	if f.submitErr != nil {
		return domain.LogEntry{}, f.submitErr
	}
	return domain.LogEntry{Kind: domain.LogCreated, TicketID: "99", Call: call}, nil
}

var call = domain.CallRecord{UserID: "U123456789", Contact: "101234", CallType: "mfa"}

func TestTicketWorkerSucceeds(t *testing.T) {
	w := NewTicketWorker(context.Background(), &fakeRunner{}, portaltest.New(), nil, nil)

	if got := w.Status().State; got != StateIdle {
		t.Fatalf("expected idle worker, got %s", got)
	}
	runID, err := w.Submit(context.Background(), call)
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	w.Wait()

	status := w.Status()
	if status.RunID != runID || status.State != StateSucceeded {
		t.Fatalf("unexpected status %+v", status)
	}
	if status.Entry == nil || status.Entry.TicketID != "99" {
		t.Errorf("expected entry for ticket 99, got %+v", status.Entry)
	}
}

func TestTicketWorkerRejectsWhileRunning(t *testing.T) {
	runner := &fakeRunner{release: make(chan struct{})}
	w := NewTicketWorker(context.Background(), runner, portaltest.New(), nil, nil)

	if _, err := w.Submit(context.Background(), call); err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	if _, err := w.Submit(context.Background(), call); !errors.Is(err, service.ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
	if got := w.Status().State; got != StateRunning {
		t.Errorf("expected running, got %s", got)
	}

	close(runner.release)
	w.Wait()
	if _, err := w.Submit(context.Background(), call); err != nil {
		t.Errorf("expected worker to accept a call after the run, got %v", err)
	}
	w.Wait()
}

func TestTicketWorkerValidationFailsSynchronously(t *testing.T) {
	runner := &fakeRunner{prepareErr: domain.ErrInvalidCall}
	w := NewTicketWorker(context.Background(), runner, portaltest.New(), nil, nil)

	if _, err := w.Submit(context.Background(), call); !errors.Is(err, domain.ErrInvalidCall) {
		t.Fatalf("expected ErrInvalidCall, got %v", err)
	}
	if got := w.Status().State; got != StateIdle {
		t.Errorf("rejected call changed state to %s", got)
	}
}

func TestTicketWorkerPublishesFailure(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher(nil)
	var (
		mu  sync.Mutex
		got []events.RunFailedPayload
	)
	dispatcher.Subscribe(events.EventRunFailed, func(ctx context.Context, e events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e.Payload.(events.RunFailedPayload))
		return nil
	})

	runner := &fakeRunner{submitErr: errors.New("portal unreachable")}
	w := NewTicketWorker(context.Background(), runner, portaltest.New(), dispatcher, nil)

	runID, err := w.Submit(context.Background(), call)
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	w.Wait()

	status := w.Status()
	if status.State != StateFailed || status.Err == nil {
		t.Fatalf("unexpected status %+v", status)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0].RunID != runID || got[0].Error != "portal unreachable" {
		t.Errorf("unexpected failure events %+v", got)
	}
}
