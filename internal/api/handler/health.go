package handler

import (
	"net/http"

	"github.com/mcoot/teamboard/internal/api/response"
	"github.com/mcoot/teamboard/internal/dependencies/clock"
)

// HealthHandler handles GET /api/v1/health
type HealthHandler struct {
	clock clock.Clock
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(clock clock.Clock) *HealthHandler {
	return &HealthHandler{clock: clock}
}

func (h *HealthHandler) Get(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.HealthResponse{
		Status:    "ok",
		Timestamp: h.clock.Now().UTC(),
	})
}
