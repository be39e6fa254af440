package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"chargectl"
)

func appendEvent(t *testing.T, repo *EventMemory, at time.Time, typ, id string) {
	t.Helper()
	err := repo.Append(context.Background(), chargectl.ChargerEvent{
		EventID:    id,
		OccurredAt: at,
		Type:       typ,
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
}

func TestEventMemory_ListFilters(t *testing.T) {
	repo := NewEventMemory(10)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	appendEvent(t, repo, base, chargectl.EventTurnOn, "e1")
	appendEvent(t, repo, base.Add(time.Minute), chargectl.EventTurnOff, "e2")
	appendEvent(t, repo, base.Add(2*time.Minute), chargectl.EventCommandFailed, "e3")

	all, err := repo.List(context.Background(), time.Time{}, time.Time{}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all events: want 3, got %d", len(all))
	}

	byType, _ := repo.List(context.Background(), time.Time{}, time.Time{}, chargectl.EventTurnOff)
	if len(byType) != 1 || byType[0].EventID != "e2" {
		t.Errorf("type filter: want [e2], got %v", byType)
	}

	byRange, _ := repo.List(context.Background(), base.Add(30*time.Second), base.Add(90*time.Second), "")
	if len(byRange) != 1 || byRange[0].EventID != "e2" {
		t.Errorf("range filter: want [e2], got %v", byRange)
	}
}

func TestEventMemory_CapacityDropsOldest(t *testing.T) {
	repo := NewEventMemory(3)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		appendEvent(t, repo, base.Add(time.Duration(i)*time.Second), chargectl.EventTurnOn, fmt.Sprintf("e%d", i))
	}

	got, err := repo.List(context.Background(), time.Time{}, time.Time{}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 retained events, got %d", len(got))
	}
	if got[0].EventID != "e2" || got[2].EventID != "e4" {
		t.Errorf("want oldest dropped, got %v .. %v", got[0].EventID, got[2].EventID)
	}
}
