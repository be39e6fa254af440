package service

// Action is what the control loop should do with the plug this iteration.
type Action int

const (
	ActionHold Action = iota // leave the plug as it is
	ActionTurnOn
	ActionTurnOff
)

func (a Action) String() string {
	switch a {
	case ActionTurnOn:
		return "turn_on"
	case ActionTurnOff:
		return "turn_off"
	default:
		return "hold"
	}
}

// Reason explains a decision, mostly for logging.
type Reason int

const (
	ReasonInRange    Reason = iota // inside the dead band, hold whatever state the plug has
	ReasonBelowStart               // at or below the start threshold, charging wanted
	ReasonAboveStop                // at or above the stop threshold, charging unwanted
	ReasonAlreadyOn                // charging wanted and plug already on
	ReasonAlreadyOff               // charging unwanted and plug already off
)

// Decision is the outcome of one policy evaluation.
type Decision struct {
	Action Action
	Reason Reason
}

// Decide applies the two-threshold hysteresis policy. Both boundaries are
// inclusive: at exactly the start threshold charging is wanted, at exactly
// the stop threshold it is not. Strictly between the thresholds the plug is
// left untouched regardless of its state; this dead band is what prevents
// oscillation around a single set point. Callers must keep start < stop or
// the dead band collapses (enforced by config validation).
func Decide(percent float64, plugOn bool, start, stop int) Decision {
	switch {
	case percent <= float64(start):
		if plugOn {
			return Decision{Action: ActionHold, Reason: ReasonAlreadyOn}
		}
		return Decision{Action: ActionTurnOn, Reason: ReasonBelowStart}
	case percent >= float64(stop):
		if !plugOn {
			return Decision{Action: ActionHold, Reason: ReasonAlreadyOff}
		}
		return Decision{Action: ActionTurnOff, Reason: ReasonAboveStop}
	default:
		return Decision{Action: ActionHold, Reason: ReasonInRange}
	}
}
