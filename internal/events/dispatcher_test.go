package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcherContinuesAfterHandlerError(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	var calls []string
	d.Subscribe(EventTicketRegistered, func(ctx context.Context, e Event) error {
		calls = append(calls, "first")
		return errors.New("sink down")
	})
	d.Subscribe(EventTicketRegistered, func(ctx context.Context, e Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventRunFailed, func(ctx context.Context, e Event) error {
		calls = append(calls, "other")
		return nil
	})

	if err := d.Publish(context.Background(), Event{Type: EventTicketRegistered}); err != nil {
		t.Fatalf("Publish() returned %v", err)
	}
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Errorf("unexpected handler calls %v", calls)
	}
}
