package handlers

import (
	"errors"
	"net/http"

	"chargectl/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK        = "ok"
	statusTurnedOn  = "turned_on"
	statusTurnedOff = "turned_off"

	errTurnOn    = "failed to turn charger on"
	errTurnOff   = "failed to turn charger off"
	errGetStatus = "failed to load charger status"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// Respond with a status and include the current snapshot if available
// (best-effort).
func (h *Handler) respondWithStatusAndState(c *gin.Context, status string) {
	ctx := c.Request.Context()
	resp := gin.H{"status": status}
	if st, err := h.services.Monitoring.GetStatus(ctx); err == nil {
		resp["state"] = st
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Charger status
// @Description  Current battery level, power source and plug state as observed by the last poll.
// @Tags         charger
// @Produce      json
// @Success      200  {object}  chargectl.ChargerStatus
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/charger/status [get]
func (h *Handler) getStatus(c *gin.Context) {
	st, err := h.services.Monitoring.GetStatus(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetStatus, "charger_status_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Turn charger on
// @Description  Manual override; the control loop reconciles it on the next poll.
// @Tags         charger
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/charger/on [post]
func (h *Handler) turnOn(c *gin.Context) {
	if err := h.services.Charger.TurnOn(c.Request.Context()); err != nil {
		h.logAndJSONError(c, commandStatusCode(err), errTurnOn, "charger_turn_on_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusTurnedOn)
}

// @Summary      Turn charger off
// @Description  Manual override; the control loop reconciles it on the next poll.
// @Tags         charger
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/charger/off [post]
func (h *Handler) turnOff(c *gin.Context) {
	if err := h.services.Charger.TurnOff(c.Request.Context()); err != nil {
		h.logAndJSONError(c, commandStatusCode(err), errTurnOff, "charger_turn_off_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusTurnedOff)
}

// commandStatusCode distinguishes an unconfirmed command (the device spoke
// but the state did not change) from a transport failure.
func commandStatusCode(err error) int {
	if errors.Is(err, service.ErrCommandNotConfirmed) {
		return http.StatusConflict
	}
	return http.StatusBadGateway
}
