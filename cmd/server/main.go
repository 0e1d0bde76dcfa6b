package main

import (
	"alcyxob/coachhub/internal/api"
	"alcyxob/coachhub/internal/auth"
	"alcyxob/coachhub/internal/config"
	"alcyxob/coachhub/internal/realtime"
	"alcyxob/coachhub/internal/repository"
	"alcyxob/coachhub/internal/repository/memory"
	"alcyxob/coachhub/internal/repository/mongo"
	"alcyxob/coachhub/internal/service"
	"alcyxob/coachhub/internal/session"
	"alcyxob/coachhub/internal/storage"
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// @title CoachHub API
// @version 1.0
// @description Trainees, trainers and admins sharing workouts, feedback and progress.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.
func main() {
	log.Println("Starting CoachHub Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "driver", cfg.Database.Driver, "auth", cfg.Auth.Provider, "redis", cfg.Redis.Enabled)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database ---
	var store repository.Store
	switch cfg.Database.Driver {
	case config.DriverMemory:
		logger.Warn("using the in-memory store, data is lost on restart")
		store = memory.NewStore()
	default:
		dbClient, err := mongo.ConnectDB(cfg.Database.URI)
		if err != nil {
			log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
		}
		defer func() {
			log.Println("Disconnecting MongoDB...")
			if err := mongo.DisconnectDB(dbClient); err != nil {
				log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
			}
		}()
		appDB := dbClient.Database(cfg.Database.Name)
		logger.Info("database connection established", "database", cfg.Database.Name)

		go func() { // Run index creation in the background
			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
			defer cancel()
			mongo.EnsureIndexes(ctx, appDB, logger)
			logger.Info("index creation process completed")
		}()
		store = mongo.NewStore(dbClient, appDB)
	}

	// --- Change notifications and sessions ---
	var notifier realtime.Notifier = realtime.NewMemoryNotifier()
	var sessions session.Store = session.NewMemoryStore()
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatalf("FATAL: Could not connect to Redis: %v", err)
		}
		defer rdb.Close()
		notifier = realtime.NewRedisNotifier(rdb, cfg.Redis.Prefix)
		sessions = session.NewRedisStore(rdb, cfg.Redis.Prefix)
		logger.Info("redis connected", "addr", cfg.Redis.Addr)
	}

	// --- Identity provider ---
	var verifier auth.Verifier
	var issuer *auth.JWTIssuer
	switch cfg.Auth.Provider {
	case config.ProviderFirebase:
		fv, err := auth.NewFirebaseVerifier(ctx, cfg.Auth.FirebaseCredentialsPath)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize Firebase auth: %v", err)
		}
		verifier = fv
	default:
		issuer = auth.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiration)
		verifier = issuer
	}

	// --- File storage ---
	fileStorage := storage.Disabled()
	if cfg.S3.Enabled() {
		s3Storage, err := storage.NewS3Storage(ctx, cfg.S3, logger)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
		}
		fileStorage = s3Storage
	} else {
		logger.Warn("s3 is not configured, avatar uploads are disabled")
	}

	// --- Initialize Services ---
	profileService := service.NewProfileService(store, fileStorage, cfg.Auth.AdminEmails, notifier, logger)
	workoutService := service.NewWorkoutService(store, notifier, logger)
	feedbackService := service.NewFeedbackService(store, notifier, logger)
	progressService := service.NewProgressService(store, notifier, logger)
	services := api.Services{
		Auth:      service.NewAuthService(store, sessions, verifier, issuer, cfg.Session.TTL, logger),
		Profiles:  profileService,
		Workouts:  workoutService,
		Feedback:  feedbackService,
		Progress:  progressService,
		Dashboard: service.NewDashboardService(profileService, workoutService, feedbackService, progressService, logger),
	}

	// --- Initialize Gin Engine ---
	if strings.EqualFold(cfg.Log.Level, "debug") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	api.SetupRoutes(router, services, api.RouterOptions{
		CORSOrigins: cfg.Server.CORSOrigins,
		SendLimiter: api.NewSendLimiter(cfg.Feedback.SendRate, cfg.Feedback.SendBurst),
	})

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:        cfg.Server.Address,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: event streams stay open for the life of the page.
		IdleTimeout: 120 * time.Second,
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}

	logger.Info("server starting", "address", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the requests it is currently handling
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Printf("ERROR: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
