package api

import (
	"net/http"

	"alcyxob/coachhub/internal/domain"
	"alcyxob/coachhub/internal/service"

	"github.com/gin-gonic/gin"
)

// WorkoutHandler serves workout plans.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

type CreateWorkoutRequest struct {
	Name            string            `json:"name" binding:"required"`
	Description     string            `json:"description"`
	Difficulty      domain.Difficulty `json:"difficulty"`
	Recommendations string            `json:"recommendations"`
}

type FeaturedRequest struct {
	Featured *bool `json:"featured" binding:"required"`
}

// CreateWorkout godoc
// @Summary Create a private workout plan
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workout body CreateWorkoutRequest true "Workout details"
// @Success 201 {object} domain.Workout
// @Failure 400 {object} gin.H "Invalid input"
// @Router /workouts [post]
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	var req CreateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	workout, err := h.workoutService.Create(c.Request.Context(), sess, service.CreateWorkoutInput{
		Name:            req.Name,
		Description:     req.Description,
		Difficulty:      req.Difficulty,
		Recommendations: req.Recommendations,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, workout)
}

// ListWorkouts godoc
// @Summary List a user's workouts, newest first
// @Description Trainers and admins may pass userId for a trainee.
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param userId query string false "Owner (defaults to caller)"
// @Success 200 {array} domain.Workout
// @Router /workouts [get]
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	workouts, err := h.workoutService.ListByOwner(c.Request.Context(), sess, c.Query("userId"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, workouts)
}

// ListPublicWorkouts godoc
// @Summary List public workouts, featured first
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Workout
// @Router /workouts/public [get]
func (h *WorkoutHandler) ListPublicWorkouts(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	workouts, err := h.workoutService.ListPublic(c.Request.Context(), sess)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, workouts)
}

// GetWorkout godoc
// @Summary Get one workout
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Success 200 {object} domain.Workout
// @Failure 403 {object} gin.H "Private workout"
// @Failure 404 {object} gin.H "Workout not found"
// @Router /workouts/{workoutId} [get]
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	workout, err := h.workoutService.Get(c.Request.Context(), sess, c.Param("workoutId"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, workout)
}

// UpdateWorkout godoc
// @Summary Merge-patch a workout
// @Description Only the fields present in the body change.
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Param patch body domain.WorkoutPatch true "Fields to change"
// @Success 200 {object} domain.Workout
// @Router /workouts/{workoutId} [patch]
func (h *WorkoutHandler) UpdateWorkout(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	var patch domain.WorkoutPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	workout, err := h.workoutService.Update(c.Request.Context(), sess, c.Param("workoutId"), patch)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, workout)
}

// SetFeatured godoc
// @Summary Feature or unfeature a public workout
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Param featured body FeaturedRequest true "New flag"
// @Success 200 {object} domain.Workout
// @Router /workouts/{workoutId}/featured [put]
func (h *WorkoutHandler) SetFeatured(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	var req FeaturedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	workout, err := h.workoutService.ToggleFeatured(c.Request.Context(), sess, c.Param("workoutId"), *req.Featured)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, workout)
}

// DeleteWorkout godoc
// @Summary Delete a workout and its exercises
// @Tags Workouts
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Success 204 "Deleted"
// @Router /workouts/{workoutId} [delete]
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	if err := h.workoutService.Delete(c.Request.Context(), sess, c.Param("workoutId")); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CloneWorkout godoc
// @Summary Copy a public workout into the caller's plans
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param workoutId path string true "Source workout ID"
// @Success 201 {object} domain.Workout
// @Failure 409 {object} gin.H "Already cloned"
// @Router /workouts/{workoutId}/clone [post]
func (h *WorkoutHandler) CloneWorkout(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	clone, err := h.workoutService.Clone(c.Request.Context(), sess, c.Param("workoutId"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, clone)
}

// StreamWorkouts streams a user's workouts as they change.
func (h *WorkoutHandler) StreamWorkouts(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	sub, err := h.workoutService.WatchOwner(c.Request.Context(), sess, c.Query("userId"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	streamSnapshots(c, sub)
}

// StreamPublicWorkouts streams the public catalogue.
func (h *WorkoutHandler) StreamPublicWorkouts(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	sub, err := h.workoutService.WatchPublic(c.Request.Context(), sess)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	streamSnapshots(c, sub)
}

// StreamWorkout streams one workout; the snapshot is null once it is gone.
func (h *WorkoutHandler) StreamWorkout(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	sub, err := h.workoutService.Watch(c.Request.Context(), sess, c.Param("workoutId"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	streamSnapshots(c, sub)
}
