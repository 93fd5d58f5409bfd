// Command server runs the broccoli job-processing service: the enqueue
// API, the queue workers and the daily report scheduler in one process.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/Afrothundr/broccoli-scheduler/internal/config"
	"github.com/Afrothundr/broccoli-scheduler/internal/platform/email"
	"github.com/Afrothundr/broccoli-scheduler/internal/platform/logger"
	"github.com/Afrothundr/broccoli-scheduler/internal/platform/ocr"
	"github.com/Afrothundr/broccoli-scheduler/internal/platform/postgres"
	"github.com/Afrothundr/broccoli-scheduler/internal/platform/recipes"
	"github.com/Afrothundr/broccoli-scheduler/internal/queue"
	"github.com/Afrothundr/broccoli-scheduler/internal/queue/memqueue"
	"github.com/Afrothundr/broccoli-scheduler/internal/queue/redisqueue"
	"github.com/Afrothundr/broccoli-scheduler/internal/scheduler"
	"github.com/Afrothundr/broccoli-scheduler/internal/worker"
)

// shutdownTimeout bounds how long graceful shutdown may take.
const shutdownTimeout = 30 * time.Second

// application holds the wired dependencies of the running service.
type application struct {
	config     *config.Config
	logger     *slog.Logger
	db         *sql.DB
	dispatcher *queue.Dispatcher
	router     *worker.Router
	scheduler  *scheduler.Scheduler
	server     *http.Server
}

func main() {
	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.run(); err != nil {
		app.logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func initializeApp() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server)
	appLogger.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"queue_backend", queueBackendName(cfg))

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := runMigrations(db, appLogger); err != nil {
		return nil, err
	}

	itemStore := postgres.NewItemStore(db, appLogger)
	userStore := postgres.NewUserStore(db, appLogger)
	receiptStore := postgres.NewReceiptStore(db, appLogger)
	deadLetterSink := postgres.NewDeadLetterSink(db, appLogger)

	queueStore, err := buildQueueStore(cfg, deadLetterSink, appLogger)
	if err != nil {
		return nil, err
	}
	dispatcher := queue.NewDispatcher(queueStore, appLogger)

	ocrClient := ocr.NewClient(cfg.OCR.Endpoint, cfg.OCR.APIKey, appLogger)
	emailClient := email.NewClient("", cfg.Email.APIKey, cfg.Email.From, appLogger)

	var recipeFinder worker.RecipeFinder
	if cfg.Recipes.APIKey != "" {
		recipeFinder = recipes.NewClient(cfg.Recipes.BaseURL, cfg.Recipes.APIKey, appLogger)
	}

	router := worker.NewRouter(queueStore, worker.Config{
		PollInterval: cfg.Worker.PollInterval,
		Concurrency:  cfg.Worker.Concurrency,
	}, appLogger)
	router.Register(queue.TypeItemUpdater, worker.NewItemUpdateHandler(itemStore, appLogger))
	router.Register(queue.TypeImageProcessor, worker.NewImageProcessHandler(ocrClient, receiptStore, appLogger))
	router.Register(queue.TypeDailyReporter, worker.NewDailyReportHandler(userStore, recipeFinder, emailClient, appLogger))

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load scheduler timezone: %w", err)
	}
	reportScheduler, err := scheduler.New(userStore, dispatcher, scheduler.Config{
		FireTime:      cfg.Scheduler.FireTime,
		Location:      location,
		Stagger:       cfg.Scheduler.Stagger,
		WeeklyAnchor:  time.Weekday(cfg.Scheduler.WeeklyAnchorDay),
		MonthlyAnchor: cfg.Scheduler.MonthlyAnchorDate,
	}, nil, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	app := &application{
		config:     cfg,
		logger:     appLogger,
		db:         db,
		dispatcher: dispatcher,
		router:     router,
		scheduler:  reportScheduler,
	}
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return app, nil
}

// buildQueueStore picks the redis backend when one is configured and falls
// back to the in-memory store otherwise.
func buildQueueStore(cfg *config.Config, sink queue.DeadLetterSink, logger *slog.Logger) (queue.Store, error) {
	backoff := queue.ExponentialBackoff{
		Initial: cfg.Queue.BackoffInitial,
		Max:     cfg.Queue.BackoffMax,
	}

	if cfg.Queue.RedisAddr == "" {
		logger.Warn("no redis address configured, using in-memory queue store")
		return memqueue.New(memqueue.Config{
			MaxAttempts:       cfg.Queue.MaxAttempts,
			VisibilityTimeout: cfg.Queue.VisibilityTimeout,
			Backoff:           backoff,
		}, sink, logger), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Queue.RedisAddr,
		Password: cfg.Queue.RedisPassword,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Queue.RedisAddr, err)
	}

	return redisqueue.New(rdb, redisqueue.Config{
		MaxAttempts:       cfg.Queue.MaxAttempts,
		VisibilityTimeout: cfg.Queue.VisibilityTimeout,
		Backoff:           backoff,
	}, sink, logger), nil
}

func queueBackendName(cfg *config.Config) string {
	if cfg.Queue.RedisAddr == "" {
		return "memory"
	}
	return "redis"
}

// run starts the workers, the scheduler and the HTTP server, then blocks
// until a shutdown signal arrives and everything drains.
func (app *application) run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.router.Start(ctx)
	app.scheduler.Start(ctx)

	serverErr := make(chan error, 1)
	go func() {
		app.logger.Info("http server listening", "addr", app.server.Addr)
		if err := app.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
		app.logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("http server shutdown failed", "error", err)
	}
	app.scheduler.Stop()
	app.router.Stop()
	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database connection", "error", err)
	}

	app.logger.Info("shutdown complete")
	return nil
}
