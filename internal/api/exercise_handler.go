package api

import (
	"net/http"

	"alcyxob/coachhub/internal/service"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler serves the exercises of a workout.
type ExerciseHandler struct {
	workoutService service.WorkoutService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(workoutService service.WorkoutService) *ExerciseHandler {
	return &ExerciseHandler{workoutService: workoutService}
}

// --- DTOs for API (Data Transfer Objects) ---

// CreateExerciseRequest defines the expected JSON for adding an exercise.
type CreateExerciseRequest struct {
	Name   string `json:"name" binding:"required"`
	Sets   int    `json:"sets" binding:"gte=0"`
	Reps   int    `json:"reps" binding:"gte=0"`
	Weight string `json:"weight"` // free text, e.g. "60kg"
}

// AddExercise godoc
// @Summary Append an exercise to a workout
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Param exercise body CreateExerciseRequest true "Exercise details"
// @Success 201 {object} domain.Exercise
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Not the owner"
// @Router /workouts/{workoutId}/exercises [post]
func (h *ExerciseHandler) AddExercise(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	exercise, err := h.workoutService.AddExercise(c.Request.Context(), sess, c.Param("workoutId"), service.ExerciseInput{
		Name:   req.Name,
		Sets:   req.Sets,
		Reps:   req.Reps,
		Weight: req.Weight,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, exercise)
}

// ListExercises godoc
// @Summary List a workout's exercises in display order
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Success 200 {array} domain.Exercise
// @Router /workouts/{workoutId}/exercises [get]
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	exercises, err := h.workoutService.ListExercises(c.Request.Context(), sess, c.Param("workoutId"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercises)
}

// RemoveExercise godoc
// @Summary Remove an exercise from a workout
// @Tags Exercises
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Param exerciseId path string true "Exercise ID"
// @Success 204 "Removed"
// @Router /workouts/{workoutId}/exercises/{exerciseId} [delete]
func (h *ExerciseHandler) RemoveExercise(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	err := h.workoutService.RemoveExercise(c.Request.Context(), sess, c.Param("workoutId"), c.Param("exerciseId"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// StreamExercises streams a workout's exercise list as it changes.
func (h *ExerciseHandler) StreamExercises(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	sub, err := h.workoutService.WatchExercises(c.Request.Context(), sess, c.Param("workoutId"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	streamSnapshots(c, sub)
}
