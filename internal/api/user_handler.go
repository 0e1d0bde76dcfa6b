package api

import (
	"net/http"

	"alcyxob/coachhub/internal/domain"
	"alcyxob/coachhub/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler serves profiles.
type UserHandler struct {
	profileService service.ProfileService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(profileService service.ProfileService) *UserHandler {
	return &UserHandler{profileService: profileService}
}

type UpdateUserRequest struct {
	Role         *domain.Role `json:"role"`
	TrainerID    *string      `json:"trainerId"`
	ClearTrainer bool         `json:"clearTrainer"`
	DisplayName  *string      `json:"displayName"`
}

type AvatarUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type AvatarURLResponse struct {
	URL string `json:"url"`
}

// ListUsers godoc
// @Summary List profiles
// @Description Admins see everyone. Trainers see their trainees, or the unassigned pool with unassigned=true.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param role query string false "Filter by role (admins)"
// @Param trainerId query string false "Filter by trainer (admins)"
// @Param unassigned query bool false "Only trainees without a trainer"
// @Success 200 {array} UserResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	filter := domain.UserFilter{
		Role:       domain.Role(c.Query("role")),
		TrainerID:  c.Query("trainerId"),
		Unassigned: c.Query("unassigned") == "true",
	}
	users, err := h.profileService.ListUsers(c.Request.Context(), sess, filter)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUsersToResponse(users))
}

// ListTrainers godoc
// @Summary List trainers
// @Description Open during onboarding so a new trainee can pick one.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Router /trainers [get]
func (h *UserHandler) ListTrainers(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	trainers, err := h.profileService.ListTrainers(c.Request.Context(), sess)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUsersToResponse(trainers))
}

// GetUser godoc
// @Summary Get a profile the caller may see
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Success 200 {object} UserResponse
// @Router /users/{userId} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	user, err := h.profileService.Get(c.Request.Context(), sess, c.Param("userId"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// UpdateUser godoc
// @Summary Change a user's role, trainer or name
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Param update body UpdateUserRequest true "Changes"
// @Success 200 {object} UserResponse
// @Failure 403 {object} gin.H "Forbidden (not an admin)"
// @Router /users/{userId} [patch]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	user, err := h.profileService.UpdateUser(c.Request.Context(), sess, c.Param("userId"), service.AdminUserUpdate{
		Role:         req.Role,
		TrainerID:    req.TrainerID,
		ClearTrainer: req.ClearTrainer,
		DisplayName:  req.DisplayName,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// RequestAvatarUpload godoc
// @Summary Get a presigned URL to upload the caller's avatar
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param upload body AvatarUploadRequest true "Image content type"
// @Success 200 {object} service.AvatarUpload
// @Failure 400 {object} gin.H "Unsupported image type"
// @Failure 503 {object} gin.H "File storage unavailable"
// @Router /users/me/avatar [post]
func (h *UserHandler) RequestAvatarUpload(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	var req AvatarUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	upload, err := h.profileService.AvatarUploadURL(c.Request.Context(), sess, req.ContentType)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, upload)
}

// GetAvatarURL godoc
// @Summary Get a presigned download URL for a user's avatar
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID, or me"
// @Success 200 {object} AvatarURLResponse
// @Failure 404 {object} gin.H "No avatar"
// @Router /users/{userId}/avatar [get]
func (h *UserHandler) GetAvatarURL(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	userID := c.Param("userId")
	if userID == "me" {
		userID = ""
	}
	url, err := h.profileService.AvatarURL(c.Request.Context(), sess, userID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, AvatarURLResponse{URL: url})
}
