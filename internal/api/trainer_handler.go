package api

import (
	"net/http"

	"alcyxob/coachhub/internal/service"

	"github.com/gin-gonic/gin"
)

// TrainerHandler serves a trainer's roster.
type TrainerHandler struct {
	profileService service.ProfileService
}

func NewTrainerHandler(profileService service.ProfileService) *TrainerHandler {
	return &TrainerHandler{profileService: profileService}
}

// GetRoster godoc
// @Summary The trainer's trainees and the unassigned pool
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Success 200 {object} RosterResponse
// @Failure 403 {object} gin.H "Forbidden (not a trainer)"
// @Router /trainer/roster [get]
func (h *TrainerHandler) GetRoster(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	roster, err := h.profileService.Roster(c.Request.Context(), sess)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, RosterResponse{
		Trainees:   MapUsersToResponse(roster.Trainees),
		Unassigned: MapUsersToResponse(roster.Unassigned),
	})
}

type RosterResponse struct {
	Trainees   []UserResponse `json:"trainees"`
	Unassigned []UserResponse `json:"unassigned"`
}

// ClaimTrainee godoc
// @Summary Take an unassigned trainee on
// @Description When two trainers claim at once, exactly one succeeds.
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Trainee ID"
// @Success 200 {object} UserResponse "Trainee now assigned to the caller"
// @Failure 400 {object} gin.H "Not a trainee"
// @Failure 404 {object} gin.H "Trainee not found"
// @Failure 409 {object} gin.H "Trainee already has a trainer"
// @Router /users/{userId}/claim [post]
func (h *TrainerHandler) ClaimTrainee(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	trainee, err := h.profileService.ClaimTrainee(c.Request.Context(), sess, c.Param("userId"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(trainee))
}
