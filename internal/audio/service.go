package audio

import (
	"bytes"
	"context"
	"fmt"

	"leads_dashboard_backend/internal/adapters/storage"
	"leads_dashboard_backend/internal/events"
	"leads_dashboard_backend/internal/leads/repository"
	"leads_dashboard_backend/platform/apperr"
	"leads_dashboard_backend/platform/config"
	"leads_dashboard_backend/platform/logger"
	"leads_dashboard_backend/platform/phone"

	"github.com/google/uuid"
)

// Lead statuses written by this pipeline.
const (
	StatusAudioAutomation = "automacao_audio_personalizado"
	StatusDiagnosticSent  = "diagnostico_enviado"
	StatusChallengeSent   = "desafio_enviado"
	StatusSimulated       = "simulacao"
)

// LeadStore is the persistence surface the pipeline needs.
type LeadStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	UpdateWhatsAppStatus(ctx context.Context, id uuid.UUID, status string) error
	InsertWhatsAppLog(ctx context.Context, leadID uuid.UUID, phone, status, message string) error
}

// Synthesizer produces audio bytes from a script.
type Synthesizer interface {
	Enabled() bool
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Messenger delivers messages and fires automations on the messaging
// platform.
type Messenger interface {
	Enabled() bool
	SendMessage(ctx context.Context, phone, message string) error
	TriggerAutomation(ctx context.Context, phone, email string) error
}

// Service runs the personalized-audio pipeline end to end.
type Service struct {
	store     LeadStore
	scripts   *ScriptGenerator
	tts       Synthesizer
	storage   storage.StorageService
	bucket    string
	messenger Messenger
	bus       events.Bus
	cfg       config.AudioConfig
	log       *logger.Logger
}

// NewService wires the pipeline. storage may be nil when MinIO is not
// configured; the pipeline then refuses non-simulated sends.
func NewService(
	store LeadStore,
	scripts *ScriptGenerator,
	tts Synthesizer,
	storageSvc storage.StorageService,
	bucket string,
	messenger Messenger,
	bus events.Bus,
	cfg config.AudioConfig,
	log *logger.Logger,
) *Service {
	return &Service{
		store:     store,
		scripts:   scripts,
		tts:       tts,
		storage:   storageSvc,
		bucket:    bucket,
		messenger: messenger,
		bus:       bus,
		cfg:       cfg,
		log:       log,
	}
}

// Result reports what the pipeline did for one lead.
type Result struct {
	Success    bool   `json:"success"`
	Simulated  bool   `json:"simulated"`
	Script     string `json:"script,omitempty"`
	ScriptType string `json:"script_type,omitempty"`
	AudioURL   string `json:"audio_url,omitempty"`
	Status     string `json:"status"`
}

// SendPersonalizedAudio generates and delivers a voice note for one lead:
// script, synthesis, upload, automation trigger, status update, log row.
// Simulation mode stops after script generation and records the dry run.
func (s *Service) SendPersonalizedAudio(ctx context.Context, leadID uuid.UUID) (Result, error) {
	lead, err := s.store.GetByID(ctx, leadID)
	if err == repository.ErrNotFound {
		return Result{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return Result{}, apperr.Wrap(apperr.KindInternal, "failed to load lead", err)
	}

	if lead.Celular == nil || *lead.Celular == "" {
		return Result{}, apperr.Validation("lead has no phone number")
	}
	leadPhone := phone.NormalizeE164(*lead.Celular)

	element := ""
	if lead.ElementoPrincipal != nil {
		element = *lead.ElementoPrincipal
	}
	script, scriptType := s.scripts.Generate(ctx, ScriptInput{
		Nome:      lead.Nome,
		Elemento:  element,
		IsStudent: lead.IsAluno || lead.IsAlunoBny2,
	})

	if s.cfg.GetSimulationMode() {
		s.log.Info("audio pipeline in simulation mode, skipping external calls",
			"lead_id", leadID, "script_type", scriptType)
		if err := s.recordOutcome(ctx, leadID, leadPhone, StatusSimulated, "simulated audio: "+scriptType); err != nil {
			return Result{}, err
		}
		s.publish(events.AudioDispatched{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    leadID,
			Phone:     leadPhone,
			Element:   element,
			Simulated: true,
		})
		return Result{Success: true, Simulated: true, Script: script, ScriptType: scriptType, Status: StatusSimulated}, nil
	}

	if s.tts == nil || !s.tts.Enabled() {
		return Result{}, apperr.Unavailable("text-to-speech is not configured")
	}
	if s.storage == nil {
		return Result{}, apperr.Unavailable("audio storage is not configured")
	}
	if s.messenger == nil || !s.messenger.Enabled() {
		return Result{}, apperr.Unavailable("messaging is not configured")
	}

	audio, err := s.tts.Synthesize(ctx, script)
	if err != nil {
		return Result{}, apperr.Wrap(apperr.KindUnavailable, "speech synthesis failed", err)
	}

	fileName := fmt.Sprintf("%s.mp3", leadID)
	fileKey, err := s.storage.UploadFile(ctx, s.bucket, "personalizado", fileName, "audio/mpeg",
		bytes.NewReader(audio), int64(len(audio)))
	if err != nil {
		return Result{}, apperr.Wrap(apperr.KindInternal, "audio upload failed", err)
	}

	download, err := s.storage.GenerateDownloadURL(ctx, s.bucket, fileKey)
	if err != nil {
		return Result{}, apperr.Wrap(apperr.KindInternal, "audio link generation failed", err)
	}

	email := ""
	if lead.Email != nil {
		email = *lead.Email
	}
	if err := s.messenger.TriggerAutomation(ctx, leadPhone, email); err != nil {
		return Result{}, apperr.Wrap(apperr.KindUnavailable, "automation trigger failed", err)
	}

	if err := s.recordOutcome(ctx, leadID, leadPhone, StatusAudioAutomation, "audio: "+fileKey); err != nil {
		return Result{}, err
	}

	s.publish(events.AudioDispatched{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    leadID,
		Phone:     leadPhone,
		Element:   element,
		AudioURL:  download.URL,
	})

	return Result{
		Success:    true,
		Script:     script,
		ScriptType: scriptType,
		AudioURL:   download.URL,
		Status:     StatusAudioAutomation,
	}, nil
}

// MessageKind selects the canned WhatsApp message.
type MessageKind string

const (
	KindDiagnostic MessageKind = "diagnostico"
	KindChallenge  MessageKind = "desafio"
	KindCustom     MessageKind = "custom"
)

// SendWhatsAppMessage delivers one of the canned messages (or a custom
// text) to a lead and records the delivery.
func (s *Service) SendWhatsAppMessage(ctx context.Context, leadID uuid.UUID, kind MessageKind, custom string) (Result, error) {
	lead, err := s.store.GetByID(ctx, leadID)
	if err == repository.ErrNotFound {
		return Result{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return Result{}, apperr.Wrap(apperr.KindInternal, "failed to load lead", err)
	}

	if lead.Celular == nil || *lead.Celular == "" {
		return Result{}, apperr.Validation("lead has no phone number")
	}
	leadPhone := phone.NormalizeE164(*lead.Celular)

	message, status, err := s.composeMessage(lead, kind, custom)
	if err != nil {
		return Result{}, err
	}

	if s.cfg.GetSimulationMode() {
		s.log.Info("whatsapp send in simulation mode", "lead_id", leadID, "kind", kind)
		if err := s.recordOutcome(ctx, leadID, leadPhone, StatusSimulated, message); err != nil {
			return Result{}, err
		}
		return Result{Success: true, Simulated: true, Status: StatusSimulated}, nil
	}

	if s.messenger == nil || !s.messenger.Enabled() {
		return Result{}, apperr.Unavailable("messaging is not configured")
	}

	if err := s.messenger.SendMessage(ctx, leadPhone, message); err != nil {
		_ = s.store.InsertWhatsAppLog(ctx, leadID, leadPhone, "failed", message)
		return Result{}, apperr.Wrap(apperr.KindUnavailable, "message delivery failed", err)
	}

	if err := s.recordOutcome(ctx, leadID, leadPhone, status, message); err != nil {
		return Result{}, err
	}

	s.publish(events.DiagnosticSent{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    leadID,
		Phone:     leadPhone,
		Kind:      string(kind),
	})

	return Result{Success: true, Status: status}, nil
}

// TriggerAutomationFor fires the messaging automation for a lead without
// generating audio. Exposed for manual re-triggers from the dashboard.
func (s *Service) TriggerAutomationFor(ctx context.Context, leadID uuid.UUID) (Result, error) {
	lead, err := s.store.GetByID(ctx, leadID)
	if err == repository.ErrNotFound {
		return Result{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return Result{}, apperr.Wrap(apperr.KindInternal, "failed to load lead", err)
	}
	if lead.Celular == nil || *lead.Celular == "" {
		return Result{}, apperr.Validation("lead has no phone number")
	}

	if s.cfg.GetSimulationMode() {
		return Result{Success: true, Simulated: true, Status: StatusSimulated}, nil
	}
	if s.messenger == nil || !s.messenger.Enabled() {
		return Result{}, apperr.Unavailable("messaging is not configured")
	}

	email := ""
	if lead.Email != nil {
		email = *lead.Email
	}
	leadPhone := phone.NormalizeE164(*lead.Celular)
	if err := s.messenger.TriggerAutomation(ctx, leadPhone, email); err != nil {
		return Result{}, apperr.Wrap(apperr.KindUnavailable, "automation trigger failed", err)
	}

	return Result{Success: true, Status: StatusAudioAutomation}, nil
}

func (s *Service) composeMessage(lead repository.Lead, kind MessageKind, custom string) (message, status string, err error) {
	firstName := lead.Nome
	baseURL := s.cfg.GetAppBaseURL()

	switch kind {
	case KindDiagnostic:
		opening := ""
		if lead.ScriptAbertura != nil {
			opening = *lead.ScriptAbertura + "\n\n"
		}
		message = fmt.Sprintf("%sOi %s! Seu diagnóstico personalizado está pronto. Acesse: %s/resultado/%s",
			opening, firstName, baseURL, lead.ID)
		status = StatusDiagnosticSent
	case KindChallenge:
		message = fmt.Sprintf("Oi %s! Você foi convidado para o desafio. Entre aqui: %s/desafio?ref=%s",
			firstName, baseURL, lead.ID)
		status = StatusChallengeSent
	case KindCustom:
		if custom == "" {
			return "", "", apperr.Validation("custom message text is required")
		}
		message = custom
		status = "mensagem_enviada"
	default:
		return "", "", apperr.Validation(fmt.Sprintf("unknown message kind %q", kind))
	}

	return message, status, nil
}

func (s *Service) recordOutcome(ctx context.Context, leadID uuid.UUID, leadPhone, status, message string) error {
	if err := s.store.UpdateWhatsAppStatus(ctx, leadID, status); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to update lead status", err)
	}
	if err := s.store.InsertWhatsAppLog(ctx, leadID, leadPhone, status, message); err != nil {
		// The status update already landed; a missing log row is not worth
		// failing the request over.
		s.log.DatabaseError("insert whatsapp log", err)
	}
	return nil
}

func (s *Service) publish(event events.Event) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(context.Background(), event)
}
