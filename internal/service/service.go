package service

import (
	"context"

	"chargectl"
	"chargectl/internal/battery"
	"chargectl/internal/config"
	"chargectl/internal/logger"
	"chargectl/internal/plug"
	"chargectl/internal/repository"
)

// Charger exposes manual plug overrides (CLI and HTTP "on"/"off").
type Charger interface {
	TurnOn(ctx context.Context) error
	TurnOff(ctx context.Context) error
}

// Monitoring exposes the read-only charger status snapshot.
type Monitoring interface {
	GetStatus(ctx context.Context) (chargectl.ChargerStatus, error)
}

// EventLog exposes the append-only event history with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]chargectl.ChargerEvent, error)
}

// Loop runs the hysteresis control loop until its context is canceled.
type Loop interface {
	Run(ctx context.Context)
}

// Service aggregates all sub-services.
type Service struct {
	Charger
	Monitoring
	EventLog
	Loop
}

// NewService wires stores and collaborators into the concrete services.
// The battery sensor and plug controller are injected: the services never
// know whether they talk to real hardware or to the simulator.
func NewService(repos *repository.Repository, sensor battery.Sensor, plugCtl plug.Controller, cfg *config.Config, log *logger.Logger) *Service {
	return &Service{
		Charger:    NewChargerService(plugCtl, repos.StateRepo, repos.EventRepo),
		Monitoring: NewMonitoringService(repos.StateRepo, cfg.Charging),
		EventLog:   NewEventLogService(repos.EventRepo),
		Loop:       NewLoopService(sensor, plugCtl, repos.StateRepo, repos.EventRepo, cfg.Charging, log),
	}
}
