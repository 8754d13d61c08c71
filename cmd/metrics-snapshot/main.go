// Command metrics-snapshot computes the dashboard aggregate once and
// prints it as JSON. Useful for debugging the pipeline against a live
// database without the HTTP layer in the way.
package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"leads_dashboard_backend/internal/crm"
	"leads_dashboard_backend/internal/groups"
	"leads_dashboard_backend/internal/leads/repository"
	"leads_dashboard_backend/internal/metrics"
	"leads_dashboard_backend/platform/config"
	"leads_dashboard_backend/platform/db"
	"leads_dashboard_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	service := metrics.NewService(
		repository.New(pool),
		crm.NewClient(cfg, log),
		groups.NewClient(cfg, log),
		cfg,
		log,
	)

	snapshot, err := service.Snapshot(ctx)
	if err != nil {
		log.Error("failed to compute metrics snapshot", "error", err)
		os.Exit(1)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snapshot); err != nil {
		log.Error("failed to encode snapshot", "error", err)
		os.Exit(1)
	}
}
