package repository

import (
	"context"
	"testing"
	"time"

	"chargectl"
)

func TestStateMemory_LoadBeforeSaveReturnsZero(t *testing.T) {
	repo := NewStateMemory()
	got, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != 0 {
		t.Fatalf("expected zero state before first save, got ID=%d", got.ID)
	}
}

func TestStateMemory_SaveThenLoad(t *testing.T) {
	repo := NewStateMemory()
	in := chargectl.ChargerStatus{
		BatteryPercent: 57.5,
		PowerSource:    "AC",
		PlugState:      "ON",
		StartThreshold: 40,
		StopThreshold:  80,
		IsMonitoring:   true,
		UpdatedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600)),
	}
	if err := repo.Save(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != 1 {
		t.Errorf("ID: want 1, got %d", got.ID)
	}
	if got.BatteryPercent != 57.5 || got.PlugState != "ON" {
		t.Errorf("snapshot fields lost: %+v", got)
	}
	if got.UpdatedAt.Location() != time.UTC {
		t.Errorf("UpdatedAt not normalized to UTC: %v", got.UpdatedAt)
	}
}

func TestStateMemory_SaveDefaultsUpdatedAt(t *testing.T) {
	repo := NewStateMemory()
	before := time.Now().UTC()
	if err := repo.Save(context.Background(), chargectl.ChargerStatus{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := time.Now().UTC()

	got, _ := repo.Load(context.Background())
	if got.UpdatedAt.Before(before) || got.UpdatedAt.After(after) {
		t.Errorf("UpdatedAt %v not within [%v, %v]", got.UpdatedAt, before, after)
	}
}
