package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	qualitygate "crowdlingo/contexts/translation-quality/quality-gate"
	qualitypostgres "crowdlingo/contexts/translation-quality/quality-gate/adapters/postgres"
	qualityworkers "crowdlingo/contexts/translation-quality/quality-gate/application/workers"
	"crowdlingo/contexts/translation-quality/quality-gate/domain/grading"
	qualityports "crowdlingo/contexts/translation-quality/quality-gate/ports"
	reputationservice "crowdlingo/contexts/translation-quality/reputation-service"
	reputationpostgres "crowdlingo/contexts/translation-quality/reputation-service/adapters/postgres"
	reviewengine "crowdlingo/contexts/translation-quality/review-engine"
	reviewpostgres "crowdlingo/contexts/translation-quality/review-engine/adapters/postgres"
	reviewworkers "crowdlingo/contexts/translation-quality/review-engine/application/workers"
	"crowdlingo/contexts/translation-quality/review-engine/domain/scoring"
	reviewports "crowdlingo/contexts/translation-quality/review-engine/ports"
	"crowdlingo/internal/platform/config"
	"crowdlingo/internal/platform/db"
	"crowdlingo/internal/platform/eventbus"
	"crowdlingo/internal/platform/httpserver"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres      *db.Postgres
	bus           eventbus.Bus
	busCloser     func() error
	reviewRelay   reviewworkers.OutboxRelay
	qualityRelay  qualityworkers.OutboxRelay
	intake        *reviewworkers.SubmissionIntakeConsumer
	statusChanged *qualityworkers.StatusChangedConsumer
	decay         *reviewworkers.ReputationDecayJob
	pollInterval  time.Duration
	decayInterval time.Duration
	logger        *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	reviewRepo := reviewpostgres.NewRepository(pg.DB, logger)
	reviewModule := reviewengine.NewModule(reviewengine.Dependencies{
		Reviews:     reviewRepo,
		Submissions: reviewRepo,
		Reputations: reviewRepo,
		Outbox:      reviewRepo,
		Clock:       reviewpostgres.SystemClock{},
		IDGen:       reviewpostgres.UUIDGenerator{},
		Policy:      scoring.DefaultPolicy(),
		Logger:      logger,
	})

	qualityRepo := qualitypostgres.NewRepository(pg.DB, logger)
	qualityModule := qualitygate.NewModule(qualitygate.Dependencies{
		Submissions: qualityRepo,
		Signals:     qualityRepo,
		Recorder:    qualityRepo,
		Probe:       qualityRepo,
		Records:     qualityRepo,
		Pairs:       qualityRepo,
		Outbox:      qualityRepo,
		Clock:       qualitypostgres.SystemClock{},
		IDGen:       qualitypostgres.UUIDGenerator{},
		Policy:      grading.DefaultPolicy(),
		Logger:      logger,
	})

	reputationRepo := reputationpostgres.NewRepository(pg.DB, logger)
	reputationModule := reputationservice.NewModule(reputationservice.Dependencies{
		Repository: reputationRepo,
		Logger:     logger,
	})

	server := httpserver.New(reviewModule, qualityModule, reputationModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	var bus eventbus.Bus
	var busCloser func() error
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		redisBus, err := eventbus.NewRedis(cfg.RedisAddr, logger)
		if err != nil {
			_ = pg.Close()
			return nil, err
		}
		bus = redisBus
		busCloser = redisBus.Close
	} else {
		// Single-process deployments move events in memory; cross-process
		// delivery needs REDIS_ADDR.
		logger.Warn("REDIS_ADDR not set, using in-process event bus",
			"event", "bootstrap_inprocess_bus",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		bus = eventbus.NewInProcess(logger)
	}

	reviewRepo := reviewpostgres.NewRepository(pg.DB, logger)
	qualityRepo := qualitypostgres.NewRepository(pg.DB, logger)

	reviewModule := reviewengine.NewModule(reviewengine.Dependencies{
		Reviews:     reviewRepo,
		Submissions: reviewRepo,
		Reputations: reviewRepo,
		Outbox:      reviewRepo,
		Clock:       reviewpostgres.SystemClock{},
		IDGen:       reviewpostgres.UUIDGenerator{},
		Policy:      scoring.DefaultPolicy(),
		Logger:      logger,
	})
	qualityModule := qualitygate.NewModule(qualitygate.Dependencies{
		Submissions: qualityRepo,
		Signals:     qualityRepo,
		Recorder:    qualityRepo,
		Probe:       qualityRepo,
		Records:     qualityRepo,
		Pairs:       qualityRepo,
		Outbox:      qualityRepo,
		Clock:       qualitypostgres.SystemClock{},
		IDGen:       qualitypostgres.UUIDGenerator{},
		Policy:      grading.DefaultPolicy(),
		Logger:      logger,
	})

	app := &WorkerApp{
		postgres:  pg,
		bus:       bus,
		busCloser: busCloser,
		reviewRelay: reviewworkers.OutboxRelay{
			Outbox:    reviewRepo,
			Publisher: reviewBus{bus: bus},
			Clock:     reviewpostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		qualityRelay: qualityworkers.OutboxRelay{
			Outbox:    qualityRepo,
			Publisher: qualityBus{bus: bus},
			Clock:     qualitypostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		pollInterval:  cfg.OutboxPollInterval,
		decayInterval: cfg.DecayInterval,
		logger:        logger,
	}

	if cfg.EnableIntakeConsumer {
		app.intake = &reviewworkers.SubmissionIntakeConsumer{
			Subscriber:    reviewBus{bus: bus},
			Dedup:         reviewRepo,
			Registrar:     reviewModule.Reviews,
			Clock:         reviewpostgres.SystemClock{},
			ConsumerGroup: "review-engine-intake-cg",
			DedupTTL:      7 * 24 * time.Hour,
			Logger:        logger,
		}
	}
	if cfg.EnableQualityConsumer {
		app.statusChanged = &qualityworkers.StatusChangedConsumer{
			Subscriber:    qualityBus{bus: bus},
			Dedup:         qualityRepo,
			Quality:       qualityModule.Quality,
			Clock:         qualitypostgres.SystemClock{},
			ConsumerGroup: "quality-gate-status-cg",
			DedupTTL:      7 * 24 * time.Hour,
			Logger:        logger,
		}
	}
	if cfg.EnableReputationDecay {
		app.decay = &reviewworkers.ReputationDecayJob{
			Reputations: reviewRepo,
			Policy:      scoring.DefaultPolicy(),
			Clock:       reviewpostgres.SystemClock{},
			Logger:      logger,
		}
	}
	return app, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if w.intake != nil {
		if err := w.intake.Start(ctx); err != nil {
			return err
		}
	}
	if w.statusChanged != nil {
		if err := w.statusChanged.Start(ctx); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	var decayCh <-chan time.Time
	if w.decay != nil {
		decayTicker := time.NewTicker(w.decayInterval)
		defer decayTicker.Stop()
		decayCh = decayTicker.C
	}

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
		"decay_interval", w.decayInterval.String(),
	)

	for {
		if err := w.reviewRelay.RunOnce(ctx); err != nil {
			return err
		}
		if err := w.qualityRelay.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-decayCh:
			if _, err := w.decay.RunOnce(ctx); err != nil {
				return err
			}
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	var firstErr error
	if w.busCloser != nil {
		firstErr = w.busCloser()
	}
	if w.postgres != nil {
		if err := w.postgres.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// reviewBus bridges the review engine's typed envelopes onto the byte-level
// platform bus.
type reviewBus struct {
	bus eventbus.Bus
}

func (b reviewBus) Publish(ctx context.Context, topic string, event reviewports.EventEnvelope) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.bus.Publish(ctx, topic, payload)
}

func (b reviewBus) Subscribe(ctx context.Context, topic string, consumerGroup string, handler reviewports.EventHandler) error {
	return b.bus.Subscribe(ctx, topic, consumerGroup, func(ctx context.Context, payload []byte) error {
		var event reviewports.EventEnvelope
		if err := json.Unmarshal(payload, &event); err != nil {
			return err
		}
		return handler(ctx, event)
	})
}

// qualityBus bridges the quality gate's typed envelopes onto the byte-level
// platform bus.
type qualityBus struct {
	bus eventbus.Bus
}

func (b qualityBus) Publish(ctx context.Context, topic string, event qualityports.EventEnvelope) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.bus.Publish(ctx, topic, payload)
}

func (b qualityBus) Subscribe(ctx context.Context, topic string, consumerGroup string, handler qualityports.EventHandler) error {
	return b.bus.Subscribe(ctx, topic, consumerGroup, func(ctx context.Context, payload []byte) error {
		var event qualityports.EventEnvelope
		if err := json.Unmarshal(payload, &event); err != nil {
			return err
		}
		return handler(ctx, event)
	})
}

var (
	_ reviewports.EventPublisher   = reviewBus{}
	_ reviewports.EventSubscriber  = reviewBus{}
	_ qualityports.EventPublisher  = qualityBus{}
	_ qualityports.EventSubscriber = qualityBus{}
)

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
