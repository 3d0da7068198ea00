// Package bootstrap wires configuration into the full dependency graph
// shared by the api and worker binaries.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/kirillkom/docnamer/internal/config"
	"github.com/kirillkom/docnamer/internal/core/ports"
	"github.com/kirillkom/docnamer/internal/core/usecase"
	"github.com/kirillkom/docnamer/internal/infrastructure/extractor"
	"github.com/kirillkom/docnamer/internal/infrastructure/ocr"
	"github.com/kirillkom/docnamer/internal/infrastructure/queue/nats"
	"github.com/kirillkom/docnamer/internal/infrastructure/repository/memory"
	"github.com/kirillkom/docnamer/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/docnamer/internal/infrastructure/resilience"
	"github.com/kirillkom/docnamer/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	Files     ports.FileRepository
	IngestUC  ports.FileIngestor
	ProcessUC ports.FileProcessor
	StatsUC   ports.QueueService

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	files, queues, closeRepos, err := openRepositories(ctx, cfg)
	if err != nil {
		return nil, err
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		closeRepos()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		closeRepos()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ocrClient := ocr.New(cfg.OCRURL).WithExecutor(executor)
	dispatcher := extractor.NewDispatcher(storage, ocrClient)

	ingestUC := usecase.NewIngestFileUseCase(files, queues, storage, queue)
	processUC := usecase.NewProcessFileUseCase(files, queues, storage, dispatcher)
	processUC.SetBatchWorkers(cfg.BatchWorkers)
	processUC.SetRenamedPrefix(cfg.RenamedPath)
	statsUC := usecase.NewQueueStatsUseCase(queues)

	return &App{
		Config: cfg,
		Queue:  queue,
		Files:  files,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		StatsUC:   statsUC,

		closeFn: func() {
			queue.Close()
			closeRepos()
		},
	}, nil
}

func openRepositories(ctx context.Context, cfg config.Config) (ports.FileRepository, ports.QueueRepository, func(), error) {
	switch cfg.RepositoryDriver {
	case "memory":
		files := memory.NewFileRepository()
		return files, memory.NewQueueRepository(files), func() {}, nil
	case "postgres":
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		closeFn := func() { _ = db.Close() }
		return postgres.NewFileRepository(db), postgres.NewQueueRepository(db), closeFn, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown repository driver %q", cfg.RepositoryDriver)
	}
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
