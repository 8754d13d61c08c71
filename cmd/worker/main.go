package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leads_dashboard_backend/internal/adapters/storage"
	"leads_dashboard_backend/internal/audio"
	"leads_dashboard_backend/internal/crm"
	"leads_dashboard_backend/internal/email"
	"leads_dashboard_backend/internal/events"
	"leads_dashboard_backend/internal/groups"
	"leads_dashboard_backend/internal/leads/repository"
	"leads_dashboard_backend/internal/messaging"
	"leads_dashboard_backend/internal/metrics"
	"leads_dashboard_backend/internal/scheduler"
	"leads_dashboard_backend/platform/config"
	"leads_dashboard_backend/platform/db"
	"leads_dashboard_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	repo := repository.New(pool)

	var storageSvc storage.StorageService
	if cfg.IsMinIOEnabled() {
		minioSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		storageSvc = minioSvc
	}

	copyLibrary, err := audio.LoadCopyLibrary(cfg.GetAudioCopiesFile())
	if err != nil {
		log.Warn("audio copy overrides not loaded", "error", err)
	}
	scripts := audio.NewScriptGenerator(copyLibrary, cfg, log)
	tts := audio.NewTTSClient(cfg)
	messenger := messaging.NewClient(cfg, log)

	audioSvc := audio.NewService(
		repo,
		scripts,
		tts,
		storageSvc,
		cfg.GetMinioBucketAudioMessages(),
		messenger,
		eventBus,
		cfg,
		log,
	)

	// Daily metrics summary over SMTP.
	var sender email.Sender = email.Noop{}
	if cfg.GetEmailEnabled() && cfg.GetSMTPHost() != "" {
		sender = email.NewSMTPSender(cfg)
	}
	metricsSvc := metrics.NewService(repo, crm.NewClient(cfg, log), groups.NewClient(cfg, log), cfg, log)
	summaryWorker := email.NewSummaryWorker(metricsSvc, sender, cfg, log)
	go summaryWorker.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, audioSvc, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
