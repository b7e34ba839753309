package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/teamboard/internal/api/apierr"
	"github.com/mcoot/teamboard/internal/api/middleware"
	"github.com/mcoot/teamboard/internal/api/request"
	"github.com/mcoot/teamboard/internal/api/response"
	"github.com/mcoot/teamboard/internal/model"
	"github.com/mcoot/teamboard/internal/services/scoreboard"
)

// ChallengeHandler handles challenge endpoints
type ChallengeHandler struct {
	controller *scoreboard.Controller
}

// NewChallengeHandler creates a new challenge handler
func NewChallengeHandler(controller *scoreboard.Controller) *ChallengeHandler {
	return &ChallengeHandler{controller: controller}
}

// List handles GET /api/v1/challenges
func (h *ChallengeHandler) List(w http.ResponseWriter, r *http.Request) {
	challenges, err := h.controller.ListChallenges(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ChallengesFromModel(challenges))
}

// Get handles GET /api/v1/challenges/{id}
func (h *ChallengeHandler) Get(w http.ResponseWriter, r *http.Request) {
	challenge, err := h.controller.GetChallenge(r.Context(), challengeID(r))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ChallengeFromModel(challenge))
}

// Create handles POST /api/v1/challenges
func (h *ChallengeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateChallengeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}

	challenge, err := h.controller.CreateChallenge(r.Context(), middleware.GetCredential(r.Context()), model.ChallengeInput{
		Title:       req.Title,
		Description: req.Description,
		Points:      req.Points,
		Status:      model.ChallengeStatus(req.Status),
	})
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.ChallengeFromModel(challenge))
}

// Update handles PUT /api/v1/challenges/{id}
func (h *ChallengeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateChallengeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}

	patch := model.ChallengePatch{
		Title:       req.Title,
		Description: req.Description,
		Points:      req.Points,
	}
	if req.Status != nil {
		status := model.ChallengeStatus(*req.Status)
		patch.Status = &status
	}

	challenge, err := h.controller.UpdateChallenge(r.Context(), middleware.GetCredential(r.Context()), challengeID(r), patch)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ChallengeFromModel(challenge))
}

// Delete handles DELETE /api/v1/challenges/{id}
func (h *ChallengeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	challenge, err := h.controller.DeleteChallenge(r.Context(), middleware.GetCredential(r.Context()), challengeID(r))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.DeleteChallengeResponse{
		Message:   "Challenge deleted",
		Challenge: response.ChallengeFromModel(challenge),
	})
}

func challengeID(r *http.Request) model.ChallengeID {
	return model.ChallengeID(mux.Vars(r)["id"])
}
