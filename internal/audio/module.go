package audio

import (
	internalhttp "leads_dashboard_backend/internal/http"
	"leads_dashboard_backend/platform/logger"
)

// Module bundles the audio pipeline behind the HTTP module interface.
type Module struct {
	service *Service
	handler *Handler
}

// NewModule wires the audio module. enqueuer may be nil when the queue
// is not configured; sends then run inline on the request.
func NewModule(service *Service, enqueuer Enqueuer, log *logger.Logger) *Module {
	return &Module{
		service: service,
		handler: NewHandler(service, enqueuer, log),
	}
}

// Name implements the http.Module interface.
func (m *Module) Name() string { return "audio" }

// RegisterRoutes mounts the audio and WhatsApp send endpoints.
func (m *Module) RegisterRoutes(ctx *internalhttp.RouterContext) {
	audio := ctx.V1.Group("/audio")
	audio.POST("/send", m.handler.SendAudio)

	whatsapp := ctx.V1.Group("/whatsapp")
	whatsapp.POST("/send", m.handler.SendWhatsApp)
	whatsapp.POST("/trigger-automation", m.handler.TriggerAutomation)
}

// Service exposes the pipeline for the background worker.
func (m *Module) Service() *Service { return m.service }
