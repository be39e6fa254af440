package repository

import (
	"context"
	"sync"
	"time"

	"chargectl"
)

// chargerStatusRowID mirrors the single-row convention: there is exactly one
// logical status snapshot, always with ID 1.
const chargerStatusRowID = 1

// StateMemory holds the latest charger status snapshot behind a mutex.
type StateMemory struct {
	mu    sync.RWMutex
	state chargectl.ChargerStatus
	set   bool
}

func NewStateMemory() *StateMemory {
	return &StateMemory{}
}

// Save replaces the snapshot. UpdatedAt is normalized to UTC and defaulted
// to now when zero, so readers can rely on it.
func (r *StateMemory) Save(_ context.Context, state chargectl.ChargerStatus) error {
	state.ID = chargerStatusRowID
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = time.Now().UTC()
	} else {
		state.UpdatedAt = state.UpdatedAt.UTC()
	}

	r.mu.Lock()
	r.state = state
	r.set = true
	r.mu.Unlock()
	return nil
}

// Load returns the snapshot, or a zero value (ID=0) when nothing was saved
// yet; callers use the zero ID as the "no state" marker.
func (r *StateMemory) Load(_ context.Context) (chargectl.ChargerStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.set {
		return chargectl.ChargerStatus{}, nil
	}
	return r.state, nil
}
