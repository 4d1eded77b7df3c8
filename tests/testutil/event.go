package testutil

import (
	"context"
	"sync"

	"github.com/erp/backoffice/internal/domain/shared"
)

// RecordingHandler subscribes to every event and keeps them in arrival order
type RecordingHandler struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

// NewRecordingHandler creates an empty recorder
func NewRecordingHandler() *RecordingHandler {
	return &RecordingHandler{}
}

// EventTypes subscribes to everything
func (h *RecordingHandler) EventTypes() []string { return nil }

// Handle records event
func (h *RecordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

// Handled returns every recorded event
func (h *RecordingHandler) Handled() []shared.DomainEvent {
	return h.filter(func(shared.DomainEvent) bool { return true })
}

// OfType returns the recorded events of one type
func (h *RecordingHandler) OfType(eventType string) []shared.DomainEvent {
	return h.filter(func(e shared.DomainEvent) bool { return e.EventType() == eventType })
}

func (h *RecordingHandler) filter(keep func(shared.DomainEvent) bool) []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []shared.DomainEvent
	for _, e := range h.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
