package handlers

import (
	"context"
	"time"

	"chargectl"
	"chargectl/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockCharger struct {
	turnOnErr  error
	turnOffErr error
	onCalls    int
	offCalls   int
}

func (m *mockCharger) TurnOn(ctx context.Context) error {
	m.onCalls++
	return m.turnOnErr
}

func (m *mockCharger) TurnOff(ctx context.Context) error {
	m.offCalls++
	return m.turnOffErr
}

type mockMonitoring struct {
	status chargectl.ChargerStatus
	err    error
}

func (m *mockMonitoring) GetStatus(ctx context.Context) (chargectl.ChargerStatus, error) {
	return m.status, m.err
}

type mockEventLog struct {
	resp       []chargectl.ChargerEvent
	err        error
	lastFilter service.LogFilter
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]chargectl.ChargerEvent, error) {
	m.lastFilter = f
	return m.resp, m.err
}

type mockLoop struct{}

func (m *mockLoop) Run(ctx context.Context) {}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func sampleStatus() chargectl.ChargerStatus {
	return chargectl.ChargerStatus{
		ID:             1,
		BatteryPercent: 63.5,
		PowerSource:    "AC",
		PlugState:      "ON",
		StartThreshold: 40,
		StopThreshold:  80,
		IsMonitoring:   true,
		UpdatedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}
