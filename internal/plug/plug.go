// Package plug controls a smart plug through the TP-Link/Kasa cloud API.
package plug

import "context"

// State is the plug's observed relay state.
type State int

const (
	StateUnknown State = iota
	StateOff
	StateOn
)

func (s State) String() string {
	switch s {
	case StateOn:
		return "ON"
	case StateOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// DeviceInfo describes the configured plug.
type DeviceInfo struct {
	Alias           string `json:"alias"`
	Model           string `json:"model"`
	DeviceID        string `json:"device_id"`
	HardwareVersion string `json:"hw_ver,omitempty"`
	SoftwareVersion string `json:"sw_ver,omitempty"`
	State           State  `json:"-"`
}

// Controller is the plug-side collaborator of the control loop.
//
// TurnOn and TurnOff return true when the command was accepted and the plug
// was post-verified in the requested state (or the verification came back
// inconclusive under the optimistic policy). They return false with a nil
// error when the command demonstrably did not take effect; a non-nil error
// means the command could not be delivered at all.
type Controller interface {
	Status(ctx context.Context) (State, error)
	TurnOn(ctx context.Context) (bool, error)
	TurnOff(ctx context.Context) (bool, error)
	Info(ctx context.Context) (DeviceInfo, error)
}
