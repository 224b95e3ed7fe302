package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/medisync/hms-api/internal/config"
	"github.com/medisync/hms-api/internal/email"
	"github.com/medisync/hms-api/internal/notifier"
	"github.com/medisync/hms-api/internal/repository/postgres"
	"github.com/medisync/hms-api/pkg/logger"
	"github.com/medisync/hms-api/pkg/messaging/redis"
	"github.com/medisync/hms-api/pkg/worker"
)

// The worker binary runs the background half of the system: it drains the
// transactional outbox into Redis and turns the resulting events into
// patient emails.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	lg := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		lg.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &log.Logger)
	if err != nil {
		lg.Fatal(err, "failed to create Redis broker")
	}
	defer broker.Close()

	outboxRepo := postgres.NewOutboxRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	userRepo := postgres.NewUserRepository(db)

	processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		BatchSize:     cfg.Outbox.BatchSize,
		PollInterval:  cfg.Outbox.PollInterval,
		RetryAttempts: cfg.Outbox.RetryAttempts,
		RetryDelay:    cfg.Outbox.RetryDelay,
	}, lg)

	emailSvc := email.NewService(cfg.SMTP)
	notify := notifier.New(broker, emailSvc, appointmentRepo, patientRepo, userRepo, lg)

	setupHealthAndMetrics(lg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		lg.Info("shutting down...")
		cancel()
	}()

	go func() {
		if err := notify.Start(ctx); err != nil {
			lg.Error(err, "notifier stopped")
		}
	}()

	processor.Start(ctx)
}

func setupHealthAndMetrics(lg *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(":8081", mux); err != nil {
			lg.Error(err, "health check server failed")
			os.Exit(1)
		}
	}()
}
