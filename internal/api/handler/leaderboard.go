package handler

import (
	"net/http"

	"github.com/mcoot/teamboard/internal/api/apierr"
	"github.com/mcoot/teamboard/internal/api/response"
	"github.com/mcoot/teamboard/internal/services/scoreboard"
)

// LeaderboardHandler handles GET /api/v1/leaderboard
type LeaderboardHandler struct {
	controller *scoreboard.Controller
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(controller *scoreboard.Controller) *LeaderboardHandler {
	return &LeaderboardHandler{controller: controller}
}

func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	standings, err := h.controller.Leaderboard(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.LeaderboardFromStandings(standings))
}
