package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/faildaily/faildaily-api/internal/config"
	"github.com/faildaily/faildaily-api/internal/domain/aggregate"
	"github.com/faildaily/faildaily-api/internal/domain/auth"
	"github.com/faildaily/faildaily-api/internal/domain/badge"
	"github.com/faildaily/faildaily-api/internal/domain/fail"
	"github.com/faildaily/faildaily-api/internal/domain/moderation"
	"github.com/faildaily/faildaily-api/internal/domain/notification"
	"github.com/faildaily/faildaily-api/internal/domain/reaction"
	"github.com/faildaily/faildaily-api/internal/domain/realtime"
	"github.com/faildaily/faildaily-api/internal/domain/user"
	"github.com/faildaily/faildaily-api/internal/middleware"
	"github.com/faildaily/faildaily-api/internal/pkg/database"
	"github.com/faildaily/faildaily-api/internal/pkg/imaging"
	"github.com/faildaily/faildaily-api/internal/pkg/jwt"
	"github.com/faildaily/faildaily-api/internal/pkg/logger"
	pkgresponse "github.com/faildaily/faildaily-api/internal/pkg/response"
	"github.com/faildaily/faildaily-api/internal/pkg/storage"
)

const (
	apiTimeout             = 30 * time.Second
	notificationCleanupInt = 24 * time.Hour
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
	})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting FailDaily API")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redisClient)

	if cfg.RunMigrations {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	var imageStore storage.Storage
	if cfg.StorageEnabled() {
		s3Store, err := storage.NewS3Storage(ctx, storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create S3 storage")
		}
		imageStore = s3Store
	} else {
		log.Warn().Msg("S3 credentials not configured, image uploads disabled")
	}

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	// ---------- Realtime ----------
	hub := realtime.NewHub(redisClient)
	go hub.Run()
	defer hub.Shutdown()

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	counter := aggregate.NewRepository(db)
	failRepo := fail.NewRepository(db)
	reactionRepo := reaction.NewRepository(db)
	moderationRepo := moderation.NewRepository(db)
	badgeRepo := badge.NewRepository(db)
	notificationRepo := notification.NewRepository(db)

	catalog, err := badge.LoadCatalog(ctx, badgeRepo)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load badge catalog")
	}

	// ---------- Services ----------
	notificationService := notification.NewService(notificationRepo, notification.NewWSPublisher(hub))
	badgeService := badge.NewService(badgeRepo, counter, catalog, notificationService, cfg.BadgeUpcomingWindow)
	moderationService := moderation.NewService(moderationRepo, counter, notificationService)
	authService := auth.NewService(userRepo, jwtService)
	failService := fail.NewService(failRepo, badgeService, imageStore,
		imaging.NewProcessor(imaging.DefaultConfig()), int64(cfg.MaxImageMB)<<20)
	reactionService := reaction.NewService(reactionRepo, counter, badgeService)

	if err := moderationService.SeedConfig(ctx, moderation.Config{
		FailReportThreshold:    cfg.DefaultFailReportThreshold,
		CommentReportThreshold: cfg.DefaultCommentReportThreshold,
		PanelAutoRefreshSec:    cfg.DefaultPanelRefreshSec,
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed moderation config")
	}

	go notification.NewCleanupJob(notificationRepo, cfg.NotificationRetentionDays).Start(ctx, notificationCleanupInt)

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(authService)
	failHandler := fail.NewHandler(failService)
	reactionHandler := reaction.NewHandler(reactionService)
	moderationHandler := moderation.NewHandler(moderationService)
	badgeHandler := badge.NewHandler(badgeService)
	notificationHandler := notification.NewHandler(notificationService)
	realtimeHandler := realtime.NewHandler(hub, jwtService, cfg.AllowedOrigins)

	authMiddleware := middleware.Auth(jwtService)
	optionalAuth := middleware.OptionalAuth(jwtService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	// WebSocket endpoint stays outside the timeout group
	r.Get("/ws", realtimeHandler.WebSocket)
	r.Get("/health", healthHandler(db, redisClient))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(apiTimeout))

		r.Route("/api/v1", func(r chi.Router) {
			r.Mount("/auth", authHandler.Routes(authMiddleware))
			mountFailRoutes(r, failHandler.Routes(authMiddleware, optionalAuth), func(fr chi.Router) {
				reactionHandler.Register(fr, authMiddleware, optionalAuth)
			})
			r.Mount("/moderation", moderationHandler.Routes(authMiddleware))
			r.Mount("/badges", badgeHandler.Routes(authMiddleware))
			r.Mount("/notifications", notificationHandler.Routes(authMiddleware))
		})

		r.Route("/api/admin", func(r chi.Router) {
			r.Mount("/moderation", moderationHandler.AdminRoutes(authMiddleware, middleware.RequireModerator()))
			r.Mount("/users", authHandler.AdminRoutes(authMiddleware, middleware.RequireRole(middleware.RoleAdmin)))
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: apiTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

// mountFailRoutes mounts the fails router once, with reaction routes
// registered on the same router so /fails is not mounted twice
func mountFailRoutes(r chi.Router, failRouter chi.Router, registerReactions func(chi.Router)) {
	registerReactions(failRouter)
	r.Mount("/fails", failRouter)
}

func healthHandler(db *sqlx.DB, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{"status": "ok", "postgres": "ok", "redis": "disabled"}
		healthy := true

		if err := db.PingContext(ctx); err != nil {
			status["postgres"] = "down"
			healthy = false
		}
		if redisClient != nil {
			status["redis"] = "ok"
			if err := redisClient.Ping(ctx).Err(); err != nil {
				status["redis"] = "down"
				healthy = false
			}
		}

		if !healthy {
			status["status"] = "degraded"
			pkgresponse.JSON(w, http.StatusServiceUnavailable, status)
			return
		}
		pkgresponse.OK(w, status)
	}
}
