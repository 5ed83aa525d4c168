package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tymchak1/flow-roles/internal/adapters/cache"
	eventadapter "github.com/tymchak1/flow-roles/internal/adapters/events"
	grpcadapter "github.com/tymchak1/flow-roles/internal/adapters/grpc"
	httpadapter "github.com/tymchak1/flow-roles/internal/adapters/http"
	"github.com/tymchak1/flow-roles/internal/adapters/memory"
	"github.com/tymchak1/flow-roles/internal/adapters/postgres"
	"github.com/tymchak1/flow-roles/internal/adapters/transfer"
	"github.com/tymchak1/flow-roles/internal/application"
	"github.com/tymchak1/flow-roles/internal/domain"
	"github.com/tymchak1/flow-roles/internal/ports"
	"google.golang.org/grpc"
)

// Runtime holds the wired service and its workers. Listeners are bound by
// RunAPI, not at construction, so the keeper binary never touches the HTTP
// or gRPC ports and both binaries can share one config on one host.
type Runtime struct {
	cfg          Config
	logger       *slog.Logger
	service      *application.Service
	router       http.Handler
	outboxWorker *eventadapter.OutboxWorker
	keeperWorker *eventadapter.KeeperWorker
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With("service", cfg.ServiceID)
	slog.SetDefault(logger)

	deps := application.Dependencies{
		Config: application.Config{
			ServiceName:          cfg.ServiceID,
			IdempotencyTTL:       cfg.IdempotencyTTL,
			OutboxFlushBatchSize: 100,
			SweepBatchSize:       cfg.SweepBatchSize,
			TriggerRegistryID:    cfg.TriggerRegistryID,
		},
		Funds: transfer.NewSettlementClient(logger, cfg.SettlementURL),
	}

	if cfg.DatabaseURL != "" {
		db, err := postgres.Connect(ctx, cfg.DatabaseURL, 10)
		if err != nil {
			return nil, err
		}
		if err := postgres.RunMigrations(ctx, db); err != nil {
			return nil, err
		}
		repos := postgres.NewRepositories(db)
		deps.Tx = repos.Tx
		deps.Deposits = repos.Deposits
		deps.Totals = repos.Totals
		deps.Roles = repos.Roles
		deps.Registry = repos.Registry
		deps.Ownership = repos.Ownership
		deps.Outbox = repos.Outbox
	} else {
		store := memory.NewStore()
		deps.Tx = store
		deps.Deposits = store
		deps.Totals = store
		deps.Roles = store
		deps.Registry = store
		deps.Ownership = store
		deps.Outbox = store
		deps.Idempotency = store.Idempotency()
	}

	if cfg.RedisURL != "" {
		redisClient, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		deps.Idempotency = cache.NewRedisIdempotencyStore(redisClient)
	}
	if deps.Idempotency == nil {
		deps.Idempotency = memory.NewStore().Idempotency()
	}

	var publisher ports.DomainPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := eventadapter.NewKafkaPublisher(cfg.KafkaBrokers, cfg.TopicDomainEvents, topicByEvent(cfg))
		if err != nil {
			return nil, err
		}
		publisher = kafkaPublisher
	} else {
		publisher = eventadapter.NewMemoryDomainPublisher()
	}
	deps.DomainEvents = publisher

	service := application.NewService(deps)

	return &Runtime{
		cfg:          cfg,
		logger:       logger,
		service:      service,
		router:       httpadapter.NewRouter(httpadapter.NewHandler(service)),
		outboxWorker: eventadapter.NewOutboxWorker(logger, service, cfg.OutboxPollInterval),
		keeperWorker: eventadapter.NewKeeperWorker(logger, service, cfg.KeeperPollInterval),
	}, nil
}

func topicByEvent(cfg Config) map[string]string {
	return map[string]string{
		domain.EventDepositCreated:   cfg.TopicDepositEvents,
		domain.EventDepositWithdrawn: cfg.TopicDepositEvents,
		domain.EventRoleGranted:      cfg.TopicRoleEvents,
		domain.EventRoleRevoked:      cfg.TopicRoleEvents,
	}
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", r.cfg.HTTPPort),
		Handler:           r.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	grpcServer := grpc.NewServer()
	grpcadapter.Register(grpcServer, grpcadapter.NewVaultInternalServer(r.service))
	grpcLis, err := net.Listen("tcp", fmt.Sprintf(":%d", r.cfg.GRPCPort))
	if err != nil {
		return err
	}

	errCh := make(chan error, 2)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		if err := grpcServer.Serve(grpcLis); err != nil {
			errCh <- err
		}
	}()
	go func() {
		if err := r.outboxWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		r.logger.ErrorContext(ctx, "runtime failure", "error", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	grpcServer.GracefulStop()
	return nil
}

// RunKeeper drives the probe/sweep trigger and the outbox drain. It binds no
// listeners.
func (r *Runtime) RunKeeper(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if r.cfg.DatabaseURL == "" {
		r.logger.WarnContext(ctx, "keeper running against in-memory storage; it sweeps only its own process state",
			"module", "bootstrap",
			"layer", "app",
			"operation", "run_keeper",
			"outcome", "degraded",
		)
	}

	errCh := make(chan error, 2)
	go func() {
		if err := r.keeperWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()
	go func() {
		if err := r.outboxWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()
	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}
