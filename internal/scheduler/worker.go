package scheduler

import (
	"context"
	"fmt"

	"leads_dashboard_backend/internal/audio"
	"leads_dashboard_backend/platform/apperr"
	"leads_dashboard_backend/platform/config"
	"leads_dashboard_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	audio  *audio.Service
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, audioSvc *audio.Service, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		audio:  audioSvc,
		log:    log,
	}

	mux.HandleFunc(TaskAudioAutomation, w.handleAudioAutomation)

	return w, nil
}

func (w *Worker) handleAudioAutomation(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseAudioAutomationPayload(task)
	if err != nil {
		return err
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return err
	}

	result, err := w.audio.SendPersonalizedAudio(ctx, leadID)
	if apperr.Is(err, apperr.KindNotFound) || apperr.Is(err, apperr.KindValidation) {
		// Deleted lead or missing phone; retrying cannot fix it.
		w.log.Warn("skipping audio task", "lead_id", leadID, "reason", err.Error())
		return nil
	}
	if err != nil {
		return err
	}

	w.log.Info("audio task completed",
		"lead_id", leadID,
		"simulated", result.Simulated,
		"status", result.Status)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
