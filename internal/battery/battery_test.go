package battery

import (
	"testing"

	dbattery "github.com/distatus/battery"
)

func TestFromBattery(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		bat         dbattery.Battery
		wantPercent float64
		wantSource  PowerSource
	}{
		{
			name:        "discharging mid charge",
			bat:         dbattery.Battery{Current: 30, Full: 60, State: dbattery.Discharging},
			wantPercent: 50,
			wantSource:  SourceBattery,
		},
		{
			name:        "charging",
			bat:         dbattery.Battery{Current: 45, Full: 60, State: dbattery.Charging},
			wantPercent: 75,
			wantSource:  SourceAC,
		},
		{
			name:        "full counts as on AC",
			bat:         dbattery.Battery{Current: 60, Full: 60, State: dbattery.Full},
			wantPercent: 100,
			wantSource:  SourceAC,
		},
		{
			name:        "controller reporting above full is clamped",
			bat:         dbattery.Battery{Current: 66, Full: 60, State: dbattery.Charging},
			wantPercent: 100,
			wantSource:  SourceAC,
		},
		{
			name:        "zero full capacity yields zero percent",
			bat:         dbattery.Battery{Current: 10, Full: 0, State: dbattery.Unknown},
			wantPercent: 0,
			wantSource:  SourceUnknown,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := fromBattery(&tc.bat)
			if got.Percent != tc.wantPercent {
				t.Errorf("percent: want %.1f, got %.1f", tc.wantPercent, got.Percent)
			}
			if got.Source != tc.wantSource {
				t.Errorf("source: want %s, got %s", tc.wantSource, got.Source)
			}
		})
	}
}

func TestPowerSourceString(t *testing.T) {
	t.Parallel()
	if SourceAC.String() != "AC" || SourceBattery.String() != "BATTERY" || SourceUnknown.String() != "UNKNOWN" {
		t.Fatalf("unexpected PowerSource strings: %s %s %s", SourceAC, SourceBattery, SourceUnknown)
	}
}
