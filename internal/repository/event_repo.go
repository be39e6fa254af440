package repository

import (
	"context"
	"sync"
	"time"

	"chargectl"
)

// EventMemory is a bounded append-only event buffer. When full, the oldest
// entries are dropped; the monitor favors recent history over completeness.
type EventMemory struct {
	mu       sync.RWMutex
	events   []chargectl.ChargerEvent
	capacity int
}

func NewEventMemory(capacity int) *EventMemory {
	if capacity <= 0 {
		capacity = defaultEventCapacity
	}
	return &EventMemory{capacity: capacity}
}

func (r *EventMemory) Append(_ context.Context, e chargectl.ChargerEvent) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	} else {
		e.OccurredAt = e.OccurredAt.UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	if len(r.events) > r.capacity {
		// Drop the oldest overflow in one cut.
		r.events = r.events[len(r.events)-r.capacity:]
	}
	return nil
}

// List returns events within [from, to] matching the type filter, oldest
// first. Zero bounds mean unbounded on that side; empty typ matches all.
func (r *EventMemory) List(_ context.Context, from, to time.Time, typ string) ([]chargectl.ChargerEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []chargectl.ChargerEvent
	for _, e := range r.events {
		if !from.IsZero() && e.OccurredAt.Before(from) {
			continue
		}
		if !to.IsZero() && e.OccurredAt.After(to) {
			continue
		}
		if typ != "" && e.Type != typ {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
