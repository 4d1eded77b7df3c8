package txn

import (
	"context"
	"errors"

	"github.com/erp/backoffice/internal/domain/shared"
)

// Events collects domain events raised inside a unit of work. They are published
// only once the transaction has committed, so a rolled back run raises nothing.
type Events struct {
	pending []shared.DomainEvent
}

// Add queues events; nil events are dropped
func (e *Events) Add(events ...shared.DomainEvent) {
	for _, ev := range events {
		if ev != nil {
			e.pending = append(e.pending, ev)
		}
	}
}

// Pending returns the queued events
func (e *Events) Pending() []shared.DomainEvent {
	return e.pending
}

// Reset drops every queued event
func (e *Events) Reset() {
	e.pending = nil
}

// Publish hands the queued events to publisher and clears the queue. A nil
// publisher discards them.
func (e *Events) Publish(ctx context.Context, publisher shared.EventPublisher) error {
	pending := e.pending
	e.pending = nil
	if publisher == nil || len(pending) == 0 {
		return nil
	}
	var errs []error
	for _, ev := range pending {
		if err := publisher.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
