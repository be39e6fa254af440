package service

import (
	"context"
	"errors"
	"time"

	"chargectl"
	"chargectl/internal/plug"
	"chargectl/internal/repository"

	"github.com/google/uuid"
)

// ErrCommandNotConfirmed reports that the plug accepted a manual command but
// could not be verified in the requested state afterwards.
var ErrCommandNotConfirmed = errors.New("plug command did not take effect")

// ChargerService executes manual plug overrides outside the control loop.
// The loop reconciles any override against the policy on its next poll.
type ChargerService struct {
	plug      plug.Controller
	stateRepo repository.StateRepo
	eventRepo repository.EventRepo
}

func NewChargerService(plugCtl plug.Controller, stateRepo repository.StateRepo, eventRepo repository.EventRepo) *ChargerService {
	return &ChargerService{plug: plugCtl, stateRepo: stateRepo, eventRepo: eventRepo}
}

// TurnOn switches the plug on and logs a MANUAL_ON event.
func (s *ChargerService) TurnOn(ctx context.Context) error {
	return s.command(ctx, s.plug.TurnOn, plug.StateOn, chargectl.EventManualOn, "charger turned on manually")
}

// TurnOff switches the plug off and logs a MANUAL_OFF event.
func (s *ChargerService) TurnOff(ctx context.Context) error {
	return s.command(ctx, s.plug.TurnOff, plug.StateOff, chargectl.EventManualOff, "charger turned off manually")
}

func (s *ChargerService) command(ctx context.Context, cmd func(context.Context) (bool, error), want plug.State, eventType, description string) error {
	now := time.Now().UTC()

	ok, err := cmd(ctx)
	if err != nil {
		s.append(ctx, chargectl.EventCommandFailed, "manual command failed: "+err.Error(), now)
		return err
	}
	if !ok {
		s.append(ctx, chargectl.EventCommandFailed, "manual command not confirmed", now)
		return ErrCommandNotConfirmed
	}

	s.append(ctx, eventType, description, now)

	// Best-effort snapshot update so status reflects the override before the
	// next loop iteration.
	st, err := s.stateRepo.Load(ctx)
	if err != nil {
		return nil
	}
	st.PlugState = want.String()
	st.UpdatedAt = now
	_ = s.stateRepo.Save(ctx, st)
	return nil
}

func (s *ChargerService) append(ctx context.Context, typ, description string, at time.Time) {
	_ = s.eventRepo.Append(ctx, chargectl.ChargerEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  at,
		Type:        typ,
		Description: description,
	})
}
