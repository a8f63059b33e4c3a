package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	seedservice "dceseed/contexts/document-emission/seed-service"
	dynamodbadapter "dceseed/contexts/document-emission/seed-service/adapters/dynamodb"
	"dceseed/contexts/document-emission/seed-service/adapters/memory"
	postgresadapter "dceseed/contexts/document-emission/seed-service/adapters/postgres"
	sqliteadapter "dceseed/contexts/document-emission/seed-service/adapters/sqlite"
	sqsadapter "dceseed/contexts/document-emission/seed-service/adapters/sqs"
	systemadapter "dceseed/contexts/document-emission/seed-service/adapters/system"
	"dceseed/contexts/document-emission/seed-service/application/commands"
	"dceseed/contexts/document-emission/seed-service/domain/entities"
	"dceseed/contexts/document-emission/seed-service/ports"
	"dceseed/internal/platform/awsclient"
	"dceseed/internal/platform/config"
	"dceseed/internal/platform/db"
	"dceseed/internal/platform/httpserver"
	"dceseed/internal/platform/messaging"

	"golang.org/x/sync/errgroup"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type SeederApp struct {
	module            seedservice.Module
	server            *httpserver.Server
	keepAliveInterval time.Duration
	runMode           string
	resources         *resources
	logger            *slog.Logger
}

type BurstApp struct {
	module    seedservice.Module
	defaults  commands.SendBurstCommand
	resources *resources
	logger    *slog.Logger
}

// resources owns the connections opened while wiring a module.
type resources struct {
	postgres *db.Postgres
	sqlite   *sql.DB
	queue    *messaging.LocalQueue
}

func BuildSeeder(ctx context.Context, cfg config.Config, logger *slog.Logger) (*SeederApp, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("service", cfg.ServiceName, "process", "seeder")

	module, res, err := buildModule(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &SeederApp{
		module:            module,
		server:            httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort)),
		keepAliveInterval: cfg.KeepAliveInterval,
		runMode:           cfg.RunMode,
		resources:         res,
		logger:            logger,
	}, nil
}

func BuildBurst(ctx context.Context, cfg config.Config, logger *slog.Logger) (*BurstApp, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("service", cfg.ServiceName, "process", "queueburst")

	// A burst only talks to the queue.
	cfg.StoreBackend = config.StoreMemory
	module, res, err := buildModule(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &BurstApp{
		module: module,
		defaults: commands.SendBurstCommand{
			Count:   cfg.BurstCount,
			GroupID: cfg.BurstGroupID,
			Delay:   cfg.BurstDelay,
		},
		resources: res,
		logger:    logger,
	}, nil
}

func buildModule(ctx context.Context, cfg config.Config, logger *slog.Logger) (seedservice.Module, *resources, error) {
	res := &resources{}

	var awsClients *awsclient.Clients
	aws := func() (awsclient.Clients, error) {
		if awsClients != nil {
			return *awsClients, nil
		}
		clients, err := awsclient.New(ctx, awsclient.Settings{
			Region:          cfg.AWSRegion,
			Endpoint:        cfg.AWSEndpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			return awsclient.Clients{}, err
		}
		awsClients = &clients
		return clients, nil
	}

	runs := memory.NewStore()
	var records ports.RecordStore
	switch cfg.StoreBackend {
	case config.StoreMemory:
		records = runs
	case config.StoreDynamoDB:
		clients, err := aws()
		if err != nil {
			return seedservice.Module{}, nil, err
		}
		records = dynamodbadapter.NewRecordStore(clients.DynamoDB, "", logger)
	case config.StorePostgres:
		pg, err := db.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return seedservice.Module{}, nil, err
		}
		res.postgres = pg
		store := postgresadapter.NewRecordStore(pg.DB, logger)
		if err := store.Migrate(ctx); err != nil {
			_ = res.Close()
			return seedservice.Module{}, nil, fmt.Errorf("migrate postgres record store: %w", err)
		}
		records = store
	case config.StoreSQLite:
		sqliteDB, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return seedservice.Module{}, nil, err
		}
		res.sqlite = sqliteDB
		store := sqliteadapter.NewRecordStore(sqliteDB, logger)
		if err := store.Migrate(ctx); err != nil {
			_ = res.Close()
			return seedservice.Module{}, nil, err
		}
		records = store
	default:
		return seedservice.Module{}, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	var queue ports.MessageQueue
	switch cfg.QueueBackend {
	case config.QueueMemory:
		res.queue = messaging.NewLocalQueue([]string{cfg.QueueName}, messaging.DefaultDeduplicationWindow, logger)
		queue = res.queue
	case config.QueueSQS:
		clients, err := aws()
		if err != nil {
			_ = res.Close()
			return seedservice.Module{}, nil, err
		}
		queue = sqsadapter.NewQueue(clients.SQS, logger)
	default:
		_ = res.Close()
		return seedservice.Module{}, nil, fmt.Errorf("unknown queue backend %q", cfg.QueueBackend)
	}

	module := seedservice.NewModule(seedservice.Dependencies{
		Records:               records,
		Queue:                 queue,
		Runs:                  runs,
		Clock:                 systemadapter.SystemClock{},
		IDGenerator:           systemadapter.UUIDGenerator{},
		QueueName:             cfg.QueueName,
		DocumentCollection:    cfg.DocumentCollection,
		DeclarationCollection: cfg.DeclarationCollection,
		DeclarationCount:      cfg.DeclarationCount,
		PublishConcurrency:    cfg.PublishConcurrency,
		Logger:                logger,
	})
	if cfg.StoreBackend == config.StoreMemory {
		module.Store = runs
	}
	return module, res, nil
}

// Seed performs one seed run. count overrides the configured declaration
// count when non-nil.
func (a *SeederApp) Seed(ctx context.Context, count *int) (entities.SeedRun, error) {
	return a.module.SeedDocuments.Execute(ctx, commands.SeedDocumentsCommand{
		DeclarationCount: count,
	})
}

// Serving reports whether the app stays up after its first run.
func (a *SeederApp) Serving() bool {
	return a.runMode == config.RunModeServe
}

// Serve runs the keep-alive loop and the HTTP surface until ctx is done.
func (a *SeederApp) Serve(ctx context.Context) error {
	interval := a.keepAliveInterval
	if interval <= 0 {
		interval = time.Minute
	}
	a.logger.Info("seeder app serving",
		"event", "bootstrap_seeder_serving",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"keep_alive_interval", interval.String(),
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return a.server.Start(groupCtx)
	})
	group.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-groupCtx.Done():
				return nil
			case <-ticker.C:
			}
			// Failures are logged by the worker; the next tick retries.
			_ = a.module.KeepAlive.RunOnce(groupCtx)
		}
	})
	return group.Wait()
}

// Messages exposes the local queue contents when the app runs on the
// in-process queue.
func (a *SeederApp) Messages(queueName string) []messaging.DeliveredMessage {
	if a.resources == nil || a.resources.queue == nil {
		return nil
	}
	return a.resources.queue.Messages(queueName)
}

func (a *SeederApp) Module() seedservice.Module {
	return a.module
}

func (a *SeederApp) Close() error {
	return a.resources.Close()
}

// BurstOverrides carries the values given on the command line. A nil field
// keeps the configured burst default; zero values are honoured as given.
type BurstOverrides struct {
	Count   *int
	GroupID *string
	Delay   *time.Duration
}

// Command resolves overrides against the configured burst defaults.
func (b *BurstApp) Command(overrides BurstOverrides) commands.SendBurstCommand {
	cmd := b.defaults
	if overrides.Count != nil {
		cmd.Count = *overrides.Count
	}
	if overrides.GroupID != nil && strings.TrimSpace(*overrides.GroupID) != "" {
		cmd.GroupID = *overrides.GroupID
	}
	if overrides.Delay != nil {
		cmd.Delay = *overrides.Delay
	}
	return cmd
}

// Run sends one burst.
func (b *BurstApp) Run(ctx context.Context, overrides BurstOverrides) (commands.SendBurstResult, error) {
	cmd := b.Command(overrides)
	b.logger.Info("burst app started",
		"event", "bootstrap_burst_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"count", cmd.Count,
		"message_group_id", cmd.GroupID,
		"delay", cmd.Delay.String(),
	)
	return b.module.SendBurst.Execute(ctx, cmd)
}

func (b *BurstApp) Close() error {
	return b.resources.Close()
}

func (r *resources) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.postgres != nil {
		errs = append(errs, r.postgres.Close())
	}
	if r.sqlite != nil {
		errs = append(errs, r.sqlite.Close())
	}
	return errors.Join(errs...)
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.Contains(value, ":") {
		return value
	}
	return ":" + value
}
