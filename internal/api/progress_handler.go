package api

import (
	"net/http"
	"strconv"

	"alcyxob/coachhub/internal/service"

	"github.com/gin-gonic/gin"
)

// ProgressHandler serves workout completions.
type ProgressHandler struct {
	progressService service.ProgressService
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progressService service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// CompleteWorkout godoc
// @Summary Record that the caller finished one of their workouts
// @Description Snapshots the workout's current exercises.
// @Tags Progress
// @Produce json
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Success 201 {object} domain.CompletionRecord
// @Router /workouts/{workoutId}/complete [post]
func (h *ProgressHandler) CompleteWorkout(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	rec, err := h.progressService.RecordCompletion(c.Request.Context(), sess, c.Param("workoutId"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// GetHistory godoc
// @Summary Latest completions, newest first
// @Tags Progress
// @Produce json
// @Security BearerAuth
// @Param userId query string false "User (trainers and admins)"
// @Param limit query int false "Maximum records (default 7)"
// @Success 200 {array} domain.CompletionRecord
// @Router /progress/history [get]
func (h *ProgressHandler) GetHistory(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	limit, ok := historyLimit(c)
	if !ok {
		return
	}
	history, err := h.progressService.History(c.Request.Context(), sess, c.Query("userId"), limit)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// GetStats godoc
// @Summary Active plans and completed workouts
// @Tags Progress
// @Produce json
// @Security BearerAuth
// @Param userId query string false "User (trainers and admins)"
// @Success 200 {object} domain.Stats
// @Router /progress/stats [get]
func (h *ProgressHandler) GetStats(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	stats, err := h.progressService.Stats(c.Request.Context(), sess, c.Query("userId"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// StreamHistory streams the completion history as new workouts are completed.
func (h *ProgressHandler) StreamHistory(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	limit, ok := historyLimit(c)
	if !ok {
		return
	}
	sub, err := h.progressService.WatchHistory(c.Request.Context(), sess, c.Query("userId"), limit)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	streamSnapshots(c, sub)
}

func historyLimit(c *gin.Context) (int64, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		abortWithError(c, http.StatusBadRequest, "limit must be a non-negative integer")
		return 0, false
	}
	return n, true
}
