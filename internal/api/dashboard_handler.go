package api

import (
	"net/http"

	"alcyxob/coachhub/internal/service"

	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the per-role landing views.
type DashboardHandler struct {
	dashboardService service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// DashboardResponse tags the view with the role it was built for so the
// client can pick a layout.
type DashboardResponse struct {
	Role string                `json:"role"`
	View service.DashboardView `json:"view"`
}

// GetDashboard godoc
// @Summary The caller's dashboard
// @Description Trainee, trainer and admin each get a different view.
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} DashboardResponse
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	view, err := h.dashboardService.Build(c.Request.Context(), sess)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, DashboardResponse{Role: string(view.Role()), View: view})
}

// GetTraineeDetail godoc
// @Summary A trainee's stats, plans, history and conversation
// @Description Opening it marks the trainee's messages to their trainer as read.
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param traineeId path string true "Trainee ID"
// @Success 200 {object} service.TraineeDetail
// @Failure 403 {object} gin.H "Not the trainee's trainer"
// @Router /dashboard/trainees/{traineeId} [get]
func (h *DashboardHandler) GetTraineeDetail(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	detail, err := h.dashboardService.TraineeDetail(c.Request.Context(), sess, c.Param("traineeId"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}
