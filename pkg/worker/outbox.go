package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/medisync/hms-api/internal/model"
	"github.com/medisync/hms-api/internal/repository"
	"github.com/medisync/hms-api/pkg/logger"
	"github.com/medisync/hms-api/pkg/messaging"
)

var (
	eventsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outbox_events_processed_total",
		Help: "Total number of successfully published outbox events",
	})
	eventsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outbox_events_failed_total",
		Help: "Total number of outbox events that exhausted retries",
	})
	publishLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "outbox_publish_duration_seconds",
		Help:    "Time spent publishing a single outbox event",
		Buckets: prometheus.DefBuckets,
	})
)

type OutboxProcessorConfig struct {
	BatchSize     int
	PollInterval  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// OutboxProcessor polls pending outbox rows and publishes them to the broker.
type OutboxProcessor struct {
	repo   repository.OutboxRepository
	broker messaging.Broker
	config OutboxProcessorConfig
	logger *logger.Logger
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	broker messaging.Broker,
	config OutboxProcessorConfig,
	logger *logger.Logger,
) *OutboxProcessor {
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 5 * time.Second
	}
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = 3
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = time.Second
	}

	return &OutboxProcessor{
		repo:   repo,
		broker: broker,
		config: config,
		logger: logger,
	}
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("starting outbox processor")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("shutting down outbox processor")
			return
		case <-ticker.C:
			if err := p.processEvents(ctx); err != nil {
				p.logger.Error(err, "failed to process outbox events")
			}
		}
	}
}

func (p *OutboxProcessor) processEvents(ctx context.Context) error {
	events, err := p.repo.GetPendingEvents(ctx, p.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch pending events: %w", err)
	}

	for _, evt := range events {
		if err := p.publishWithRetry(ctx, evt); err != nil {
			eventsFailed.Inc()
			msg := err.Error()
			if uerr := p.repo.UpdateStatus(ctx, evt.ID, model.OutboxStatusFailed, &msg); uerr != nil {
				p.logger.Error(uerr, "failed to mark event failed")
			}
			continue
		}
		eventsProcessed.Inc()
		if err := p.repo.UpdateStatus(ctx, evt.ID, model.OutboxStatusProcessed, nil); err != nil {
			p.logger.Error(err, "failed to mark event processed")
		}
	}
	return nil
}

func (p *OutboxProcessor) publishWithRetry(ctx context.Context, evt *model.OutboxEvent) error {
	var err error
	for attempt := 0; attempt < p.config.RetryAttempts; attempt++ {
		start := time.Now()
		err = p.broker.Publish(ctx, evt.EventType, messaging.Message{
			Type:    evt.EventType,
			Payload: evt.Payload,
		})
		publishLatency.Observe(time.Since(start).Seconds())
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.config.RetryDelay):
		}
	}
	return fmt.Errorf("publish failed after %d attempts: %w", p.config.RetryAttempts, err)
}
