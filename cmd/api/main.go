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
	"leads_dashboard_backend/internal/events"
	"leads_dashboard_backend/internal/groups"
	apphttp "leads_dashboard_backend/internal/http"
	"leads_dashboard_backend/internal/http/router"
	"leads_dashboard_backend/internal/leads"
	"leads_dashboard_backend/internal/messaging"
	"leads_dashboard_backend/internal/metrics"
	"leads_dashboard_backend/internal/scheduler"
	"leads_dashboard_backend/internal/webhook"
	"leads_dashboard_backend/platform/config"
	"leads_dashboard_backend/platform/db"
	"leads_dashboard_backend/platform/logger"
	"leads_dashboard_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

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
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// Storage for generated voice notes (MinIO). Optional: without it the
	// audio pipeline only works in simulation mode.
	var storageSvc storage.StorageService
	if cfg.IsMinIOEnabled() {
		minioSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		if err := withRetry(ctx, log, "ensure audio bucket", 5, 2*time.Second, func() error {
			return minioSvc.EnsureBucketExists(ctx, cfg.GetMinioBucketAudioMessages())
		}); err != nil {
			log.Error("failed to ensure audio bucket exists", "error", err)
			panic("failed to ensure audio bucket exists: " + err.Error())
		}
		storageSvc = minioSvc
		log.Info("storage service initialized", "audioBucket", cfg.GetMinioBucketAudioMessages())
	} else {
		log.Warn("MINIO_ENDPOINT not configured; audio uploads disabled")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	leadsModule := leads.NewModule(pool, val)

	crmClient := crm.NewClient(cfg, log)
	groupsClient := groups.NewClient(cfg, log)
	metricsModule := metrics.NewModule(leadsModule.Repository(), crmClient, groupsClient, cfg, log)

	copyLibrary, err := audio.LoadCopyLibrary(cfg.GetAudioCopiesFile())
	if err != nil {
		// The built-in copy still applies; only the overrides were lost.
		log.Warn("audio copy overrides not loaded", "error", err)
	}
	scripts := audio.NewScriptGenerator(copyLibrary, cfg, log)
	tts := audio.NewTTSClient(cfg)
	messenger := messaging.NewClient(cfg, log)

	audioSvc := audio.NewService(
		leadsModule.Repository(),
		scripts,
		tts,
		storageSvc,
		cfg.GetMinioBucketAudioMessages(),
		messenger,
		eventBus,
		cfg,
		log,
	)

	var audioQueue audio.Enqueuer
	if cfg.GetRedisURL() != "" {
		queueClient, err := scheduler.NewClient(cfg)
		if err != nil {
			log.Error("failed to initialize scheduler client", "error", err)
			panic("failed to initialize scheduler client: " + err.Error())
		}
		defer func() { _ = queueClient.Close() }()
		audioQueue = queueClient
	} else {
		log.Warn("REDIS_URL not configured; audio sends run inline")
	}

	audioModule := audio.NewModule(audioSvc, audioQueue, log)
	webhookModule := webhook.NewModule(leadsModule.Repository(), eventBus, log)

	// Newly flagged students can get their personalized audio without a
	// manual dashboard action.
	if cfg.GetAutoAudioOnStudentFlag() {
		eventBus.Subscribe(events.StudentFlagged{}.EventName(), events.HandlerFunc(
			func(ctx context.Context, event events.Event) error {
				flagged, ok := event.(events.StudentFlagged)
				if !ok {
					return nil
				}
				if audioQueue != nil {
					return audioQueue.EnqueueAudioAutomation(ctx, flagged.LeadID)
				}
				_, err := audioSvc.SendPersonalizedAudio(ctx, flagged.LeadID)
				return err
			}))
		log.Info("auto audio on student flag enabled")
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			leadsModule,
			metricsModule,
			audioModule,
			webhookModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
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
