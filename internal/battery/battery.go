// Package battery reads the laptop's charge level and power source.
package battery

import (
	"errors"
	"fmt"

	dbattery "github.com/distatus/battery"
)

// PowerSource reports where the machine currently draws power from.
type PowerSource int

const (
	SourceUnknown PowerSource = iota
	SourceAC
	SourceBattery
)

func (s PowerSource) String() string {
	switch s {
	case SourceAC:
		return "AC"
	case SourceBattery:
		return "BATTERY"
	default:
		return "UNKNOWN"
	}
}

// Reading is one battery sample. Produced fresh on every poll and never
// mutated afterwards.
type Reading struct {
	Percent float64     // 0..100
	Source  PowerSource // AC / battery / unknown
}

// ErrNoBattery reports that no battery hardware is present or queryable.
// The control loop treats it as a skip-this-iteration condition, not a fault.
var ErrNoBattery = errors.New("no battery hardware available")

// Sensor reports the current battery state.
type Sensor interface {
	Read() (Reading, error)
}

// SystemSensor reads the host battery through the OS power APIs.
type SystemSensor struct{}

func NewSystemSensor() *SystemSensor {
	return &SystemSensor{}
}

func (s *SystemSensor) Read() (Reading, error) {
	bats, err := dbattery.GetAll()
	if err != nil {
		// Partial errors still carry usable batteries; anything else is a
		// real query failure.
		if _, partial := err.(dbattery.Errors); !partial {
			return Reading{}, fmt.Errorf("query batteries: %w", err)
		}
	}
	if len(bats) == 0 {
		return Reading{}, ErrNoBattery
	}
	return fromBattery(bats[0]), nil
}

// fromBattery normalizes one OS battery record into a Reading.
func fromBattery(b *dbattery.Battery) Reading {
	var percent float64
	if b.Full > 0 {
		percent = b.Current / b.Full * 100
	}
	// Some controllers report slightly above design capacity.
	if percent > 100 {
		percent = 100
	}
	if percent < 0 {
		percent = 0
	}

	var source PowerSource
	switch b.State {
	case dbattery.Charging, dbattery.Full:
		source = SourceAC
	case dbattery.Discharging, dbattery.Empty:
		source = SourceBattery
	default:
		source = SourceUnknown
	}
	return Reading{Percent: percent, Source: source}
}
