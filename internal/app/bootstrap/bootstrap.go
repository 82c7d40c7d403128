package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	payoutsequencer "esusu/contexts/savings-core/payout-sequencer"
	sequencerpostgres "esusu/contexts/savings-core/payout-sequencer/adapters/postgres"
	poollifecycle "esusu/contexts/savings-core/pool-lifecycle"
	lifecyclepostgres "esusu/contexts/savings-core/pool-lifecycle/adapters/postgres"
	lifecycleworkers "esusu/contexts/savings-core/pool-lifecycle/application/workers"
	poolmembership "esusu/contexts/savings-core/pool-membership"
	membershippostgres "esusu/contexts/savings-core/pool-membership/adapters/postgres"
	membershipworkers "esusu/contexts/savings-core/pool-membership/application/workers"
	reputationengine "esusu/contexts/trust-risk/reputation-engine"
	reputationpostgres "esusu/contexts/trust-risk/reputation-engine/adapters/postgres"
	"esusu/internal/platform/config"
	"esusu/internal/platform/db"
	"esusu/internal/platform/httpserver"
	"esusu/internal/platform/messaging"

	"github.com/robfig/cron/v3"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres *db.Postgres
	cron     *cron.Cron
	logger   *slog.Logger
}

type modules struct {
	reputation reputationengine.Module
	lifecycle  poollifecycle.Module
	sequencer  payoutsequencer.Module
	membership poolmembership.Module

	lifecycleRepo  *lifecyclepostgres.Repository
	membershipRepo *membershippostgres.Repository
}

func buildModules(pg *db.Postgres, logger *slog.Logger) modules {
	reputationRepo := reputationpostgres.NewRepository(pg.DB, logger)
	reputation := reputationengine.NewModule(reputationengine.Dependencies{
		Profiles:  reputationRepo,
		History:   reputationRepo,
		Referrals: reputationRepo,
		Logger:    logger,
	})

	lifecycleRepo := lifecyclepostgres.NewRepository(pg.DB, logger)
	lifecycle := poollifecycle.NewModule(poollifecycle.Dependencies{
		Pools:  lifecycleRepo,
		Clock:  lifecyclepostgres.SystemClock{},
		Logger: logger,
	})

	sequencerRepo := sequencerpostgres.NewRepository(pg.DB, logger)
	sequencer := payoutsequencer.NewModule(payoutsequencer.Dependencies{
		Memberships: sequencerRepo,
		Trust:       TrustReaderGateway{Reputation: reputation.Service},
		Logger:      logger,
	})

	membershipRepo := membershippostgres.NewRepository(pg.DB, logger)
	membership := poolmembership.NewModule(poolmembership.Dependencies{
		Pools:          membershipRepo,
		Memberships:    membershipRepo,
		Idempotency:    membershipRepo,
		Outbox:         membershipRepo,
		Lifecycle:      LifecycleGateway{Lifecycle: lifecycle.Service},
		Sequencer:      SequencerGateway{Sequencer: sequencer.Service},
		Reputation:     ReputationGateway{Reputation: reputation.Service},
		Clock:          membershippostgres.SystemClock{},
		IDGenerator:    membershippostgres.UUIDGenerator{},
		IdempotencyTTL: 7 * 24 * time.Hour,
		Logger:         logger,
	})

	return modules{
		reputation:     reputation,
		lifecycle:      lifecycle,
		sequencer:      sequencer,
		membership:     membership,
		lifecycleRepo:  lifecycleRepo,
		membershipRepo: membershipRepo,
	}
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

	mods := buildModules(pg, logger)
	server := httpserver.New(
		mods.reputation,
		mods.lifecycle,
		mods.sequencer,
		mods.membership,
		logger,
		normalizeAddr(cfg.HTTPPort),
	)
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

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	mods := buildModules(pg, logger)
	scheduler := cron.New()
	ctx := context.Background()

	if cfg.EnableCycleCompletion {
		completer := lifecycleworkers.CycleCompleter{
			Service:   mods.lifecycle.Service,
			Pools:     mods.lifecycleRepo,
			BatchSize: cfg.WorkerBatchSize,
			Logger:    logger,
		}
		if _, err := scheduler.AddFunc(cfg.CycleCompletionSpec, func() {
			runWorker(ctx, logger, "cycle_completer", completer.RunOnce)
		}); err != nil {
			return nil, err
		}
	}

	if cfg.EnableFillTimeoutSweep {
		sweeper := lifecycleworkers.FillTimeoutSweeper{
			Service:   mods.lifecycle.Service,
			Pools:     mods.lifecycleRepo,
			Clock:     lifecyclepostgres.SystemClock{},
			BatchSize: cfg.WorkerBatchSize,
			Logger:    logger,
		}
		if _, err := scheduler.AddFunc(cfg.FillTimeoutSpec, func() {
			runWorker(ctx, logger, "fill_timeout_sweeper", sweeper.RunOnce)
		}); err != nil {
			return nil, err
		}
	}

	if cfg.EnableOutboxRelay {
		relay := membershipworkers.OutboxRelay{
			Outbox:    mods.membershipRepo,
			Publisher: kafka,
			Clock:     membershippostgres.SystemClock{},
			BatchSize: cfg.WorkerBatchSize,
			Logger:    logger,
		}
		if _, err := scheduler.AddFunc(cfg.OutboxRelaySpec, func() {
			runWorker(ctx, logger, "outbox_relay", relay.RunOnce)
		}); err != nil {
			return nil, err
		}
	}

	return &WorkerApp{
		postgres: pg,
		cron:     scheduler,
		logger:   logger,
	}, nil
}

func runWorker(ctx context.Context, logger *slog.Logger, name string, run func(context.Context) error) {
	if err := run(ctx); err != nil {
		logger.Error("worker cycle failed",
			"event", "bootstrap_worker_cycle_failed",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"worker", name,
			"error", err.Error(),
		)
	}
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
	w.cron.Start()
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)

	<-ctx.Done()
	stopped := w.cron.Stop()
	<-stopped.Done()
	return nil
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

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
