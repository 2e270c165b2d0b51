package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	gormlogger "gorm.io/gorm/logger"

	"deck-server/internal/config"
	"deck-server/internal/domain/deck"
	"deck-server/internal/domain/export"
	"deck-server/internal/domain/generation"
	"deck-server/internal/domain/retry"
	"deck-server/internal/infrastructure/database"
	"deck-server/internal/infrastructure/llmprovider"
	"deck-server/internal/infrastructure/logger"
	"deck-server/internal/infrastructure/metrics"
	"deck-server/internal/infrastructure/observability"
	"deck-server/internal/infrastructure/queue"
	exportjobrepo "deck-server/internal/infrastructure/repository/exportjob"
	presentationrepo "deck-server/internal/infrastructure/repository/presentation"
	"deck-server/internal/interfaces/httpserver"
	"deck-server/internal/interfaces/httpserver/handlers"
	"deck-server/internal/interfaces/httpserver/routes"
	"deck-server/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("setup observability")
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn().Err(err).Msg("shutdown observability")
		}
	}()

	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}

	presentationRepo := presentationrepo.NewPostgresRepository(db)
	jobRepo := exportjobrepo.NewPostgresRepository(db)
	provider := llmprovider.NewClient(cfg.LLMAPIURL)

	policy := retry.DefaultPolicy()
	policy.MaxRetries = cfg.MaxUnitRetries

	generator := generation.NewGenerator(provider, generation.GeneratorOptions{
		Policy:      policy,
		UnitTimeout: cfg.UnitTimeout,
		Model:       cfg.DefaultModel,
		OnRetry: func(kind generation.ErrorKind) {
			metrics.UnitRetries.WithLabelValues(kind.String()).Inc()
		},
		Logger: log,
	})
	scheduler := generation.NewScheduler(generator, log)

	deckService := deck.NewService(presentationRepo, provider, scheduler, deck.ServiceOptions{
		MaxConcurrentUnits: cfg.MaxConcurrentUnits,
		MaxSlideCount:      cfg.MaxSlideCount,
		DefaultModel:       cfg.DefaultModel,
	}, log)

	builder := export.NewBuilder(export.Thresholds{
		FrameCoverageEpsilon: cfg.FrameCoverageEpsilon,
		MinTextBoxChars:      cfg.MinTextBoxChars,
	})
	exportService := deck.NewExportService(builder, presentationRepo, jobRepo, log)

	taskQueue := queue.NewPostgresQueue(db, log)
	pool := worker.NewPool(taskQueue, exportService, worker.Config{
		WorkerCount: cfg.ExportWorkerCount,
		TaskTimeout: cfg.ExportTaskTimeout,
	}, log)
	pool.Start(ctx)
	defer pool.Stop()

	handlerProvider := handlers.NewProvider(deckService, exportService, cfg, log)
	routeProvider := routes.NewProvider(handlerProvider)

	server := httpserver.New(cfg, routeProvider, log)
	if err := server.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("http server")
	}

	log.Info().Msg("server stopped")
}
