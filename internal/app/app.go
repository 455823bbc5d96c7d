package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"TrendScanner/internal/config"
	"TrendScanner/internal/infrastructure/feed"
	"TrendScanner/internal/infrastructure/llm"
	"TrendScanner/internal/infrastructure/scheduler"
	"TrendScanner/internal/infrastructure/storage"
	"TrendScanner/internal/logging"
	"TrendScanner/internal/ports"
	"TrendScanner/internal/scanner"
	"TrendScanner/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	logger    *slog.Logger
	db        *sql.DB
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry := scanner.NewRegistry()
	registry.Register(feed.NewHeadlineScanner(nil))

	source := feed.NewStrategySource(registry, cfg.Sites, logging.Component(baseLogger, "source"))

	var generator ports.TextGenerator
	switch cfg.Generator.Provider {
	case "anthropic":
		generator = llm.NewAnthropicGenerator(cfg.Generator)
	default:
		generator = llm.NewChatGPTGenerator(cfg.Generator)
	}

	var (
		repository ports.SelectionRepository
		db         *sql.DB
	)
	if cfg.Database.DSN != "" {
		conn, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		db = conn
		repository = storage.NewPostgresRepository(conn)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Generator:  generator,
		Repository: repository,
		Options:    cfg.Pipeline,
		Logger:     logging.Component(baseLogger, "pipeline"),
	})

	driver := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location())
	sched := usecase.NewScheduler(driver, pipeline, logging.Component(baseLogger, "scheduler"))

	return &Application{
		cfg:       cfg,
		pipeline:  pipeline,
		scheduler: sched,
		logger:    baseLogger,
		db:        db,
	}, nil
}

// RunOnce performs a single pipeline execution for the current day.
func (a *Application) RunOnce(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}

	now := time.Now().In(a.cfg.Scheduler.Location())
	_, report, err := a.pipeline.ProcessDay(ctx, now)
	if err != nil {
		return err
	}

	a.logger.Info("run finished", "run", report.RunID, "status", report.Overall)
	return nil
}

// Serve starts recurring runs and blocks until the context is canceled.
func (a *Application) Serve(ctx context.Context) error {
	if a.scheduler == nil {
		return nil
	}

	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return a.scheduler.Stop(stopCtx)
}

// Close releases shared resources.
func (a *Application) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
