package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/carelink/clinic-portal-api/internal/config"
	authHandler "github.com/carelink/clinic-portal-api/internal/handler/auth"
	clinicHandler "github.com/carelink/clinic-portal-api/internal/handler/clinic"
	doctorHandler "github.com/carelink/clinic-portal-api/internal/handler/doctor"
	healthHandler "github.com/carelink/clinic-portal-api/internal/handler/health"
	"github.com/carelink/clinic-portal-api/internal/identity"
	"github.com/carelink/clinic-portal-api/internal/middleware"
	"github.com/carelink/clinic-portal-api/internal/repository/postgres"
	"github.com/carelink/clinic-portal-api/internal/router"
	directoryService "github.com/carelink/clinic-portal-api/internal/service/directory"
	profileService "github.com/carelink/clinic-portal-api/internal/service/profile"
	rosterService "github.com/carelink/clinic-portal-api/internal/service/roster"
	syncService "github.com/carelink/clinic-portal-api/internal/service/sync"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	baseRepo := postgres.NewBaseRepository(db)
	userRepo := postgres.NewUserRepository(baseRepo)
	clinicRepo := postgres.NewClinicRepository(baseRepo)
	doctorRepo := postgres.NewDoctorRepository(baseRepo)
	outboxRepo := postgres.NewOutboxRepository(baseRepo)

	// Services
	syncSvc := syncService.NewService(userRepo, clinicRepo, outboxRepo)
	rosterSvc := rosterService.NewService(doctorRepo, userRepo, outboxRepo)
	profileSvc := profileService.NewService(clinicRepo, outboxRepo)
	directorySvc := directoryService.NewService(doctorRepo, userRepo, outboxRepo)

	// Middleware
	verifier := identity.NewVerifier(cfg.Identity)
	authMiddleware := middleware.NewAuthMiddleware(verifier)
	clinicAuthMiddleware := middleware.NewClinicAuthMiddleware(userRepo, clinicRepo)

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimit)
	}

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.Security.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Security.AllowedOrigins
	}

	// Router
	r := router.NewRouter(
		authMiddleware,
		clinicAuthMiddleware,
		authHandler.NewHandler(syncSvc),
		clinicHandler.NewHandler(rosterSvc, profileSvc),
		doctorHandler.NewHandler(directorySvc),
		healthHandler.NewHandler(db),
		router.RouterConfig{
			RateLimiter:    rateLimiter,
			CORSConfig:     corsConfig,
			RequestTimeout: cfg.Server.RequestTimeout,
			MetricsPrefix:  "clinic_portal",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
