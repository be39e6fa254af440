package service

import (
	"context"
	"time"

	"chargectl"
	"chargectl/internal/config"
	"chargectl/internal/plug"
	"chargectl/internal/repository"
)

type MonitoringService struct {
	stateRepo repository.StateRepo
	cfg       config.ChargingConfig
}

func NewMonitoringService(stateRepo repository.StateRepo, cfg config.ChargingConfig) *MonitoringService {
	return &MonitoringService{stateRepo: stateRepo, cfg: cfg}
}

// GetStatus returns the latest charger status snapshot.
// Before the loop has produced one, a baseline snapshot is returned.
func (s *MonitoringService) GetStatus(ctx context.Context) (chargectl.ChargerStatus, error) {
	state, err := s.stateRepo.Load(ctx)
	if err != nil {
		return chargectl.ChargerStatus{}, err
	}
	if state.ID == 0 {
		return s.baselineStatus(), nil
	}
	state.UpdatedAt = toUTC(state.UpdatedAt)
	return state, nil
}

// baselineStatus is the snapshot before any poll completed: nothing is known
// yet beyond the configured thresholds.
func (s *MonitoringService) baselineStatus() chargectl.ChargerStatus {
	return chargectl.ChargerStatus{
		ID:             1,
		PowerSource:    "UNKNOWN",
		PlugState:      plug.StateUnknown.String(),
		StartThreshold: s.cfg.StartThreshold,
		StopThreshold:  s.cfg.StopThreshold,
		IsMonitoring:   false,
		UpdatedAt:      time.Now().UTC(),
	}
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
