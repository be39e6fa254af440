package service

import (
	"context"
	"sync"
	"time"

	"chargectl/internal/battery"
	"chargectl/internal/plug"
)

// ----------- Simulation constants -----------
const (
	SimChargePerSec = 0.4  // percent gained per second while the plug is on
	SimDrainPerSec  = 0.2  // percent lost per second while the plug is off
	SimStartPercent = 50.0 // initial charge level
)

// Simulator is an in-memory battery and smart plug pair. It implements both
// collaborator interfaces, so the control loop runs against it unchanged:
// percent climbs while the plug is on and drains while it is off.
type Simulator struct {
	mu        sync.Mutex
	percent   float64
	plugOn    bool
	updatedAt time.Time
}

func NewSimulator() *Simulator {
	return &Simulator{
		percent:   SimStartPercent,
		updatedAt: time.Now(),
	}
}

// Run advances the simulated battery at the given tick until ctx is canceled.
func (s *Simulator) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.advance(now)
		}
	}
}

func (s *Simulator) advance(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elapsed := now.Sub(s.updatedAt).Seconds()
	if elapsed <= 0 {
		return
	}
	if s.plugOn {
		s.percent += SimChargePerSec * elapsed
	} else {
		s.percent -= SimDrainPerSec * elapsed
	}
	s.percent = clampPercent(s.percent)
	s.updatedAt = now
}

// ---- battery.Sensor ----

func (s *Simulator) Read() (battery.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	source := battery.SourceBattery
	if s.plugOn {
		source = battery.SourceAC
	}
	return battery.Reading{Percent: s.percent, Source: source}, nil
}

// ---- plug.Controller ----

func (s *Simulator) Status(context.Context) (plug.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.plugOn {
		return plug.StateOn, nil
	}
	return plug.StateOff, nil
}

func (s *Simulator) TurnOn(context.Context) (bool, error) {
	s.setPlug(true)
	return true, nil
}

func (s *Simulator) TurnOff(context.Context) (bool, error) {
	s.setPlug(false)
	return true, nil
}

func (s *Simulator) Info(context.Context) (plug.DeviceInfo, error) {
	st, _ := s.Status(context.Background())
	return plug.DeviceInfo{
		Alias:    "simulated-plug",
		Model:    "SIM-1",
		DeviceID: "simulated-device",
		State:    st,
	}, nil
}

// setPlug flips the relay, folding the elapsed drift in first so the rate
// change applies from this moment on.
func (s *Simulator) setPlug(on bool) {
	now := time.Now()
	s.advance(now)
	s.mu.Lock()
	s.plugOn = on
	s.updatedAt = now
	s.mu.Unlock()
}

func clampPercent(p float64) float64 {
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}
