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

	"github.com/medisync/hms-api/internal/config"
	analyticsHandler "github.com/medisync/hms-api/internal/handler/analytics"
	appointmentHandler "github.com/medisync/hms-api/internal/handler/appointment"
	authHandler "github.com/medisync/hms-api/internal/handler/auth"
	doctorHandler "github.com/medisync/hms-api/internal/handler/doctor"
	healthHandler "github.com/medisync/hms-api/internal/handler/health"
	invoiceHandler "github.com/medisync/hms-api/internal/handler/invoice"
	medicineHandler "github.com/medisync/hms-api/internal/handler/medicine"
	patientHandler "github.com/medisync/hms-api/internal/handler/patient"
	prescriptionHandler "github.com/medisync/hms-api/internal/handler/prescription"
	userHandler "github.com/medisync/hms-api/internal/handler/user"
	"github.com/medisync/hms-api/internal/middleware"
	"github.com/medisync/hms-api/internal/repository/postgres"
	"github.com/medisync/hms-api/internal/router"
	analyticsService "github.com/medisync/hms-api/internal/service/analytics"
	appointmentService "github.com/medisync/hms-api/internal/service/appointment"
	authService "github.com/medisync/hms-api/internal/service/auth"
	doctorService "github.com/medisync/hms-api/internal/service/doctor"
	invoiceService "github.com/medisync/hms-api/internal/service/invoice"
	medicineService "github.com/medisync/hms-api/internal/service/medicine"
	patientService "github.com/medisync/hms-api/internal/service/patient"
	prescriptionService "github.com/medisync/hms-api/internal/service/prescription"
	userService "github.com/medisync/hms-api/internal/service/user"
	"github.com/medisync/hms-api/internal/validation"
	"github.com/medisync/hms-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if err := validation.Register(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	medicineRepo := postgres.NewMedicineRepository(db)
	prescriptionRepo := postgres.NewPrescriptionRepository(db)
	invoiceRepo := postgres.NewInvoiceRepository(db)

	// Services
	hasher := security.NewBcryptHasher(cfg.Security.BcryptCost)
	authSvc := authService.NewService(userRepo, hasher, cfg.JWT)
	userSvc := userService.NewService(userRepo)
	doctorSvc := doctorService.NewService(doctorRepo, userRepo)
	patientSvc := patientService.NewService(patientRepo, userRepo)
	analyticsSvc := analyticsService.NewService(userRepo, appointmentRepo, invoiceRepo, cfg.Cache.DashboardTTL)
	appointmentSvc := appointmentService.NewService(
		appointmentRepo, doctorRepo, patientRepo, analyticsSvc,
	)
	medicineSvc := medicineService.NewService(medicineRepo)
	prescriptionSvc := prescriptionService.NewService(
		prescriptionRepo, appointmentRepo, doctorRepo, patientRepo, medicineRepo, invoiceRepo, analyticsSvc,
	)
	invoiceSvc := invoiceService.NewService(
		invoiceRepo, appointmentRepo, doctorRepo, patientRepo, analyticsSvc,
	)

	// Middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	r := router.NewRouter(
		authMiddleware,
		authHandler.NewHandler(authSvc),
		userHandler.NewHandler(userSvc),
		doctorHandler.NewHandler(doctorSvc),
		patientHandler.NewHandler(patientSvc),
		appointmentHandler.NewHandler(appointmentSvc),
		medicineHandler.NewHandler(medicineSvc),
		prescriptionHandler.NewHandler(prescriptionSvc),
		invoiceHandler.NewHandler(invoiceSvc),
		analyticsHandler.NewHandler(analyticsSvc),
		healthHandler.NewHandler(db),
		router.Config{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimitRPS:     cfg.RateLimit.RequestsPerSecond,
			RateLimitBurst:   cfg.RateLimit.Burst,
			RequestTimeout:   cfg.Server.RequestTimeout,
			CORSConfig:       corsConfig(cfg),
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
		log.Info().Int("port", cfg.Server.Port).Msg("starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

func corsConfig(cfg *config.Config) middleware.CORSConfig {
	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.Security.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.Security.AllowedOrigins
	}
	if len(cfg.Security.AllowedMethods) > 0 {
		corsCfg.AllowMethods = cfg.Security.AllowedMethods
	}
	if len(cfg.Security.AllowedHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.Security.AllowedHeaders
	}
	return corsCfg
}
