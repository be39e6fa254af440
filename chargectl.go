package chargectl

import "time"

// ChargerStatus is the current snapshot of the charging controller.
// A single logical row (ID=1) is maintained; it lives in memory only.
type ChargerStatus struct {
	ID             int       `json:"id"`
	BatteryPercent float64   `json:"battery_percent"`         // 0..100
	PowerSource    string    `json:"power_source"`            // AC | BATTERY | UNKNOWN
	PlugState      string    `json:"plug_state"`              // ON | OFF | UNKNOWN
	LastAction     string    `json:"last_action,omitempty"`   // e.g. turned_on, already_off
	StartThreshold int       `json:"start_threshold"`         // turn charging on at or below
	StopThreshold  int       `json:"stop_threshold"`          // turn charging off at or above
	IsMonitoring   bool      `json:"is_monitoring"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ChargerEvent is a single log entry.
type ChargerEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // TURN_ON | TURN_OFF | MANUAL_ON | MANUAL_OFF | COMMAND_FAILED | SENSOR_UNAVAILABLE | ERROR
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}

// Event types appended by the services.
const (
	EventTurnOn            = "TURN_ON"
	EventTurnOff           = "TURN_OFF"
	EventManualOn          = "MANUAL_ON"
	EventManualOff         = "MANUAL_OFF"
	EventCommandFailed     = "COMMAND_FAILED"
	EventSensorUnavailable = "SENSOR_UNAVAILABLE"
	EventError             = "ERROR"
)
