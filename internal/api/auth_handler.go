package api

import (
	"net/http"
	"time"

	"alcyxob/coachhub/internal/domain"
	"alcyxob/coachhub/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService    service.AuthService
	profileService service.ProfileService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, profileService service.ProfileService) *AuthHandler {
	return &AuthHandler{authService: authService, profileService: profileService}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type AccountResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	Me        MeResponse    `json:"me"`
	User      *UserResponse `json:"user,omitempty"`
}

// MeResponse describes the signed-in caller. Profile is nil until
// onboarding is done.
type MeResponse struct {
	UserID          string        `json:"userId"`
	DisplayName     string        `json:"displayName"`
	Email           string        `json:"email"`
	Role            domain.Role   `json:"role,omitempty"`
	NeedsOnboarding bool          `json:"needsOnboarding"`
	Profile         *UserResponse `json:"profile,omitempty"`
}

type OnboardingRequest struct {
	Role        domain.Role `json:"role" binding:"required"`
	TrainerID   string      `json:"trainerId"`
	DisplayName string      `json:"displayName"`
}

// --- Handler Methods ---

// Register godoc
// @Summary Register a local account
// @Description Creates email/password credentials. The profile is chosen at onboarding.
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Registration details"
// @Success 201 {object} AccountResponse "Account created successfully"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 409 {object} gin.H "Conflict (email already exists)"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	account, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, AccountResponse{
		ID:        account.ID,
		Name:      account.Name,
		Email:     account.Email,
		CreatedAt: account.CreatedAt,
	})
}

// Login godoc
// @Summary Log in with email and password
// @Description Opens a session and returns a JWT bound to it.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse "Login successful"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 401 {object} gin.H "Unauthorized (invalid credentials)"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	me := mapSessionToMe(result.Session)
	c.JSON(http.StatusOK, LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Me:        me,
		User:      me.Profile,
	})
}

// Logout godoc
// @Summary End the current session
// @Tags Auth
// @Security BearerAuth
// @Success 204 "Signed out"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	if err := h.authService.Logout(c.Request.Context(), sess); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me godoc
// @Summary Describe the signed-in caller
// @Description Works before onboarding so the client can route to it.
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MeResponse
// @Router /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, mapSessionToMe(sess))
}

// Onboard godoc
// @Summary Choose a role once
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param onboarding body OnboardingRequest true "Role and optional trainer"
// @Success 201 {object} UserResponse
// @Failure 400 {object} gin.H "Invalid role or trainer"
// @Failure 403 {object} gin.H "Admin role not allowed"
// @Failure 409 {object} gin.H "Already onboarded"
// @Router /onboarding [post]
func (h *AuthHandler) Onboard(c *gin.Context) {
	sess, ok := mustSession(c)
	if !ok {
		return
	}
	var req OnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, err := h.profileService.Onboard(c.Request.Context(), sess, service.OnboardingInput{
		Role:        req.Role,
		TrainerID:   req.TrainerID,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapUserToResponse(user))
}
