package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"chargectl"
	"chargectl/internal/service"
)

func logsRouter(log *mockEventLog) http.Handler {
	return newTestRouter(&service.Service{
		Monitoring: &mockMonitoring{},
		Charger:    &mockCharger{},
		EventLog:   log,
		Loop:       &mockLoop{},
	})
}

func TestGetLogs_OK(t *testing.T) {
	log := &mockEventLog{resp: []chargectl.ChargerEvent{
		{EventID: "e1", Type: chargectl.EventTurnOn},
		{EventID: "e2", Type: chargectl.EventTurnOff},
	}}
	router := logsRouter(log)

	w := performRequest(router, http.MethodGet, "/api/v1/logs/")
	if w.Code != http.StatusOK {
		t.Fatalf("status: want 200, got %d (%s)", w.Code, w.Body.String())
	}

	var got struct {
		Count  int                      `json:"count"`
		Events []chargectl.ChargerEvent `json:"events"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if got.Count != 2 || len(got.Events) != 2 {
		t.Errorf("want 2 events, got count=%d len=%d", got.Count, len(got.Events))
	}
}

func TestGetLogs_TypeFilterNormalized(t *testing.T) {
	log := &mockEventLog{}
	router := logsRouter(log)

	w := performRequest(router, http.MethodGet, "/api/v1/logs/?type=turn_on")
	if w.Code != http.StatusOK {
		t.Fatalf("status: want 200, got %d", w.Code)
	}
	if log.lastFilter.Type != chargectl.EventTurnOn {
		t.Errorf("type filter: want TURN_ON, got %q", log.lastFilter.Type)
	}
}

func TestGetLogs_DateOnlyToIsEndOfDay(t *testing.T) {
	log := &mockEventLog{}
	router := logsRouter(log)

	w := performRequest(router, http.MethodGet, "/api/v1/logs/?from=2026-03-01&to=2026-03-01")
	if w.Code != http.StatusOK {
		t.Fatalf("status: want 200, got %d (%s)", w.Code, w.Body.String())
	}
	wantFrom := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if !log.lastFilter.From.Equal(wantFrom) {
		t.Errorf("from: want %v, got %v", wantFrom, log.lastFilter.From)
	}
	if log.lastFilter.To.Before(wantFrom.Add(23 * time.Hour)) {
		t.Errorf("to should be end of day, got %v", log.lastFilter.To)
	}
}

func TestGetLogs_InvalidTime(t *testing.T) {
	router := logsRouter(&mockEventLog{})

	w := performRequest(router, http.MethodGet, "/api/v1/logs/?from=not-a-date")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: want 400, got %d", w.Code)
	}
}

func TestGetLogs_InvertedRange(t *testing.T) {
	router := logsRouter(&mockEventLog{})

	w := performRequest(router, http.MethodGet, "/api/v1/logs/?from=2026-03-02&to=2026-03-01")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: want 400, got %d", w.Code)
	}
}
