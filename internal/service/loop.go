package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chargectl"
	"chargectl/internal/battery"
	"chargectl/internal/config"
	"chargectl/internal/logger"
	"chargectl/internal/plug"
	"chargectl/internal/repository"

	"github.com/google/uuid"
)

// Memo values recording the last logged outcome. The memo only suppresses
// repeated identical log lines across consecutive iterations; removing it
// would change verbosity, never control behavior.
const (
	memoNone              = ""
	memoTurnedOn          = "turned_on"
	memoTurnedOff         = "turned_off"
	memoAlreadyOn         = "already_on"
	memoAlreadyOff        = "already_off"
	memoInRangeOn         = "in_range_on"
	memoInRangeOff        = "in_range_off"
	memoSensorUnavailable = "sensor_unavailable"
)

// LoopService is the hysteresis charge controller: one sequential loop that
// reads the battery, reads the plug, applies Decide and issues commands.
type LoopService struct {
	sensor    battery.Sensor
	plug      plug.Controller
	stateRepo repository.StateRepo
	eventRepo repository.EventRepo
	cfg       config.ChargingConfig
	log       *logger.Logger

	lastAction string
}

func NewLoopService(sensor battery.Sensor, plugCtl plug.Controller, stateRepo repository.StateRepo, eventRepo repository.EventRepo, cfg config.ChargingConfig, log *logger.Logger) *LoopService {
	return &LoopService{
		sensor:    sensor,
		plug:      plugCtl,
		stateRepo: stateRepo,
		eventRepo: eventRepo,
		cfg:       cfg,
		log:       log,
	}
}

// Run polls until ctx is canceled. Iterations are strictly sequential: the
// next one never starts before the previous command (and its verification)
// completed. No failure inside an iteration stops the loop; it is logged and
// the loop sleeps the normal interval before retrying.
func (s *LoopService) Run(ctx context.Context) {
	s.log.Infow("starting battery monitoring loop",
		"start_threshold", s.cfg.StartThreshold,
		"stop_threshold", s.cfg.StopThreshold,
		"poll_interval", s.cfg.PollInterval.String(),
	)
	for {
		if ctx.Err() != nil {
			s.log.Infow("battery monitoring loop stopped")
			return
		}
		if err := s.iterate(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Errorw("monitoring iteration failed", "err", err)
			s.appendEvent(ctx, chargectl.EventError, err.Error(), nil)
		}
		if err := sleepOrDone(ctx, s.cfg.PollInterval); err != nil {
			s.log.Infow("battery monitoring loop stopped")
			return
		}
	}
}

// iterate performs one poll: sample, decide, act, record.
func (s *LoopService) iterate(ctx context.Context) error {
	reading, err := s.sensor.Read()
	if errors.Is(err, battery.ErrNoBattery) {
		// Not a fault: the machine has no queryable battery right now.
		// Skip the decision entirely and wait the full interval.
		if s.lastAction != memoSensorUnavailable {
			s.log.Warnw("unable to get battery information")
			s.appendEvent(ctx, chargectl.EventSensorUnavailable, "battery information unavailable", nil)
			s.lastAction = memoSensorUnavailable
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read battery: %w", err)
	}

	plugState, err := s.plug.Status(ctx)
	if err != nil {
		return fmt.Errorf("read plug status: %w", err)
	}
	// Unknown is treated as not-on: if charging is actually running the next
	// poll observes it and reconciles.
	plugOn := plugState == plug.StateOn

	s.log.Infow("battery status",
		"percent", fmt.Sprintf("%.1f", reading.Percent),
		"power", reading.Source.String(),
		"charger", plugState.String(),
	)

	d := Decide(reading.Percent, plugOn, s.cfg.StartThreshold, s.cfg.StopThreshold)
	finalState := s.execute(ctx, d, reading, plugState)

	s.saveSnapshot(ctx, reading, finalState)
	return nil
}

// execute carries out the decision, maintains the log memo and returns the
// plug state as known after the action.
func (s *LoopService) execute(ctx context.Context, d Decision, reading battery.Reading, observed plug.State) plug.State {
	switch d.Action {
	case ActionTurnOn:
		s.log.Infow("turning charger ON",
			"percent", fmt.Sprintf("%.1f", reading.Percent), "threshold", s.cfg.StartThreshold)
		ok, err := s.plug.TurnOn(ctx)
		switch {
		case err != nil:
			s.log.Errorw("turn on command failed", "err", err)
			s.appendEvent(ctx, chargectl.EventCommandFailed, "turn on command failed: "+err.Error(), s.eventMeta(reading))
		case ok:
			s.log.Infow("charger turned ON")
			s.appendEvent(ctx, chargectl.EventTurnOn, "charger turned on", s.eventMeta(reading))
			s.lastAction = memoTurnedOn
			return plug.StateOn
		default:
			s.log.Warnw("failed to turn charger ON")
			s.appendEvent(ctx, chargectl.EventCommandFailed, "turn on did not take effect", s.eventMeta(reading))
		}
		return observed

	case ActionTurnOff:
		s.log.Infow("turning charger OFF",
			"percent", fmt.Sprintf("%.1f", reading.Percent), "threshold", s.cfg.StopThreshold)
		ok, err := s.plug.TurnOff(ctx)
		switch {
		case err != nil:
			s.log.Errorw("turn off command failed", "err", err)
			s.appendEvent(ctx, chargectl.EventCommandFailed, "turn off command failed: "+err.Error(), s.eventMeta(reading))
		case ok:
			s.log.Infow("charger turned OFF")
			s.appendEvent(ctx, chargectl.EventTurnOff, "charger turned off", s.eventMeta(reading))
			s.lastAction = memoTurnedOff
			return plug.StateOff
		default:
			s.log.Warnw("failed to turn charger OFF")
			s.appendEvent(ctx, chargectl.EventCommandFailed, "turn off did not take effect", s.eventMeta(reading))
		}
		return observed

	default:
		s.holdAndMaybeLog(d.Reason, reading, observed)
		return observed
	}
}

// holdAndMaybeLog records a no-op outcome, logging it only when it differs
// from the previous iteration's outcome.
func (s *LoopService) holdAndMaybeLog(reason Reason, reading battery.Reading, observed plug.State) {
	switch reason {
	case ReasonAlreadyOn:
		if s.lastAction != memoAlreadyOn {
			s.log.Infow("charger already ON",
				"percent", fmt.Sprintf("%.1f", reading.Percent), "threshold", s.cfg.StartThreshold)
			s.lastAction = memoAlreadyOn
		}
	case ReasonAlreadyOff:
		if s.lastAction != memoAlreadyOff {
			s.log.Infow("charger already OFF",
				"percent", fmt.Sprintf("%.1f", reading.Percent), "threshold", s.cfg.StopThreshold)
			s.lastAction = memoAlreadyOff
		}
	default: // in range
		memo := memoInRangeOff
		if observed == plug.StateOn {
			memo = memoInRangeOn
		}
		if s.lastAction != memoInRangeOn && s.lastAction != memoInRangeOff {
			s.log.Infow("battery between thresholds, charger unchanged",
				"percent", fmt.Sprintf("%.1f", reading.Percent),
				"start_threshold", s.cfg.StartThreshold,
				"stop_threshold", s.cfg.StopThreshold,
				"charger", observed.String(),
			)
		}
		s.lastAction = memo
	}
}

func (s *LoopService) saveSnapshot(ctx context.Context, reading battery.Reading, state plug.State) {
	snap := chargectl.ChargerStatus{
		BatteryPercent: reading.Percent,
		PowerSource:    reading.Source.String(),
		PlugState:      state.String(),
		LastAction:     s.lastAction,
		StartThreshold: s.cfg.StartThreshold,
		StopThreshold:  s.cfg.StopThreshold,
		IsMonitoring:   true,
		UpdatedAt:      time.Now().UTC(),
	}
	if err := s.stateRepo.Save(ctx, snap); err != nil {
		s.log.Errorw("save status snapshot failed", "err", err)
	}
}

func (s *LoopService) appendEvent(ctx context.Context, typ, description string, metadata any) {
	err := s.eventRepo.Append(ctx, chargectl.ChargerEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  time.Now().UTC(),
		Type:        typ,
		Description: description,
		Metadata:    metadata,
	})
	if err != nil {
		s.log.Errorw("append event failed", "err", err, "type", typ)
	}
}

func (s *LoopService) eventMeta(reading battery.Reading) map[string]any {
	return map[string]any{
		"percent":         reading.Percent,
		"power_source":    reading.Source.String(),
		"start_threshold": s.cfg.StartThreshold,
		"stop_threshold":  s.cfg.StopThreshold,
	}
}

// sleepOrDone waits for d or returns early with the context's error.
func sleepOrDone(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
