package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/teamboard/internal/api/apierr"
	"github.com/mcoot/teamboard/internal/api/middleware"
	"github.com/mcoot/teamboard/internal/api/request"
	"github.com/mcoot/teamboard/internal/api/response"
	"github.com/mcoot/teamboard/internal/model"
	"github.com/mcoot/teamboard/internal/services/ledger"
	"github.com/mcoot/teamboard/internal/services/scoreboard"
)

// TeamHandler handles team endpoints
type TeamHandler struct {
	controller *scoreboard.Controller
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(controller *scoreboard.Controller) *TeamHandler {
	return &TeamHandler{controller: controller}
}

// List handles GET /api/v1/teams
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	teams, err := h.controller.ListTeams(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.TeamsFromModel(teams))
}

// Get handles GET /api/v1/teams/{id}
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	team, err := h.controller.GetTeam(r.Context(), teamID(r))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.TeamFromModel(team))
}

// Create handles POST /api/v1/teams
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateTeamRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}

	team, err := h.controller.CreateTeam(r.Context(), middleware.GetCredential(r.Context()), model.TeamInput{
		Name:   req.Name,
		Points: req.Points,
		Status: model.TeamStatus(req.Status),
		Color:  req.Color,
	})
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.TeamFromModel(team))
}

// Update handles PUT /api/v1/teams/{id}
func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateTeamRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}

	patch := model.TeamPatch{
		Name:   req.Name,
		Points: req.Points,
		Color:  req.Color,
	}
	if req.Status != nil {
		status := model.TeamStatus(*req.Status)
		patch.Status = &status
	}

	team, err := h.controller.UpdateTeam(r.Context(), middleware.GetCredential(r.Context()), teamID(r), patch)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.TeamFromModel(team))
}

// UpdatePoints handles PATCH /api/v1/teams/{id}/points
func (h *TeamHandler) UpdatePoints(w http.ResponseWriter, r *http.Request) {
	var req request.UpdatePointsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}

	op, err := ledger.ParseOperation(req.Operation)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	team, err := h.controller.UpdatePoints(r.Context(), middleware.GetCredential(r.Context()), teamID(r), op, req.Points)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.TeamFromModel(team))
}

// Delete handles DELETE /api/v1/teams/{id}
func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	team, err := h.controller.DeleteTeam(r.Context(), middleware.GetCredential(r.Context()), teamID(r))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.DeleteTeamResponse{
		Message: "Team deleted",
		Team:    response.TeamFromModel(team),
	})
}

func teamID(r *http.Request) model.TeamID {
	return model.TeamID(mux.Vars(r)["id"])
}
