package api

import (
	"net/http"
	"time"

	"alcyxob/coachhub/internal/domain"
	"alcyxob/coachhub/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Services bundles what the handlers depend on.
type Services struct {
	Auth      service.AuthService
	Profiles  service.ProfileService
	Workouts  service.WorkoutService
	Feedback  service.FeedbackService
	Progress  service.ProgressService
	Dashboard service.DashboardService
}

// RouterOptions configures the cross-cutting middleware.
type RouterOptions struct {
	CORSOrigins []string
	SendLimiter *SendLimiter
}

func SetupRoutes(router *gin.Engine, services Services, opts RouterOptions) {
	if len(opts.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Retry-After"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if opts.SendLimiter == nil {
		opts.SendLimiter = NewSendLimiter(1, 5)
	}

	authHandler := NewAuthHandler(services.Auth, services.Profiles)
	userHandler := NewUserHandler(services.Profiles)
	trainerHandler := NewTrainerHandler(services.Profiles)
	workoutHandler := NewWorkoutHandler(services.Workouts)
	exerciseHandler := NewExerciseHandler(services.Workouts)
	feedbackHandler := NewFeedbackHandler(services.Feedback)
	progressHandler := NewProgressHandler(services.Progress)
	dashboardHandler := NewDashboardHandler(services.Dashboard)

	authMiddleware := AuthMiddleware(services.Auth)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", authMiddleware, authHandler.Logout)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		// Reachable before onboarding.
		protected.GET("/me", authHandler.Me)
		protected.POST("/onboarding", authHandler.Onboard)
		protected.GET("/trainers", userHandler.ListTrainers)

		protected.GET("/dashboard", dashboardHandler.GetDashboard)
		protected.GET("/dashboard/trainees/:traineeId",
			RoleMiddleware(domain.RoleTrainer, domain.RoleAdmin), dashboardHandler.GetTraineeDetail)

		// --- Users ---
		userGroup := protected.Group("/users")
		{
			userGroup.GET("", RoleMiddleware(domain.RoleTrainer, domain.RoleAdmin), userHandler.ListUsers)
			userGroup.POST("/me/avatar", userHandler.RequestAvatarUpload)
			userGroup.GET("/:userId", userHandler.GetUser)
			userGroup.PATCH("/:userId", RoleMiddleware(domain.RoleAdmin), userHandler.UpdateUser)
			userGroup.GET("/:userId/avatar", userHandler.GetAvatarURL)
			userGroup.POST("/:userId/claim", RoleMiddleware(domain.RoleTrainer), trainerHandler.ClaimTrainee)
		}

		// --- Trainer Specific Routes ---
		trainerApiGroup := protected.Group("/trainer")
		trainerApiGroup.Use(RoleMiddleware(domain.RoleTrainer, domain.RoleAdmin))
		{
			trainerApiGroup.GET("/roster", trainerHandler.GetRoster)
		}

		// --- Workout Routes ---
		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.POST("", workoutHandler.CreateWorkout)
			workoutGroup.GET("", workoutHandler.ListWorkouts)
			workoutGroup.GET("/stream", workoutHandler.StreamWorkouts)
			workoutGroup.GET("/public", workoutHandler.ListPublicWorkouts)
			workoutGroup.GET("/public/stream", workoutHandler.StreamPublicWorkouts)
			workoutGroup.GET("/:workoutId", workoutHandler.GetWorkout)
			workoutGroup.GET("/:workoutId/stream", workoutHandler.StreamWorkout)
			workoutGroup.PATCH("/:workoutId", workoutHandler.UpdateWorkout)
			workoutGroup.DELETE("/:workoutId", workoutHandler.DeleteWorkout)
			workoutGroup.PUT("/:workoutId/featured",
				RoleMiddleware(domain.RoleTrainer, domain.RoleAdmin), workoutHandler.SetFeatured)
			workoutGroup.POST("/:workoutId/clone", workoutHandler.CloneWorkout)
			workoutGroup.POST("/:workoutId/complete", progressHandler.CompleteWorkout)

			// --- Exercise Routes ---
			workoutGroup.GET("/:workoutId/exercises", exerciseHandler.ListExercises)
			workoutGroup.POST("/:workoutId/exercises", exerciseHandler.AddExercise)
			workoutGroup.GET("/:workoutId/exercises/stream", exerciseHandler.StreamExercises)
			workoutGroup.DELETE("/:workoutId/exercises/:exerciseId", exerciseHandler.RemoveExercise)
		}

		// --- Feedback Routes ---
		feedbackGroup := protected.Group("/feedback")
		{
			feedbackGroup.GET("", feedbackHandler.ListFeedback)
			feedbackGroup.POST("", opts.SendLimiter.Middleware(), feedbackHandler.SendFeedback)
			feedbackGroup.GET("/stream", feedbackHandler.StreamFeedback)
			feedbackGroup.GET("/conversations", feedbackHandler.ListConversations)
			feedbackGroup.GET("/unread", RoleMiddleware(domain.RoleTrainer, domain.RoleAdmin), feedbackHandler.UnreadCount)
			feedbackGroup.POST("/read", feedbackHandler.MarkRead)
			feedbackGroup.DELETE("/:messageId", feedbackHandler.DismissFeedback)
		}

		// --- Progress Routes ---
		progressGroup := protected.Group("/progress")
		{
			progressGroup.GET("/history", progressHandler.GetHistory)
			progressGroup.GET("/history/stream", progressHandler.StreamHistory)
			progressGroup.GET("/stats", progressHandler.GetStats)
		}
	}
}
