package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health answers liveness probes.  It deliberately touches no backing
// store: MySQL or Redis being down is a degraded state, not a reason for
// the orchestrator to restart the process.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "eatery-backend",
	})
}
