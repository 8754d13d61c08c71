package audio

import (
	"context"
	"net/http"

	"leads_dashboard_backend/platform/apperr"
	"leads_dashboard_backend/platform/httpkit"
	"leads_dashboard_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Enqueuer hands audio work off to the background queue. Nil means the
// queue is not configured and sends run inline.
type Enqueuer interface {
	EnqueueAudioAutomation(ctx context.Context, leadID uuid.UUID) error
}

// Handler exposes the audio and WhatsApp send endpoints.
type Handler struct {
	service  *Service
	enqueuer Enqueuer
	log      *logger.Logger
}

// NewHandler builds the handler.
func NewHandler(service *Service, enqueuer Enqueuer, log *logger.Logger) *Handler {
	return &Handler{service: service, enqueuer: enqueuer, log: log}
}

type leadRequest struct {
	LeadID string `json:"leadId" binding:"required"`
}

type whatsappSendRequest struct {
	LeadID          string `json:"leadId" binding:"required"`
	SendDiagnostico bool   `json:"sendDiagnostico"`
	SendChallenge   bool   `json:"sendChallenge"`
	CustomMessage   string `json:"customMessage"`
}

// SendAudio queues (or, without a queue, runs inline) the personalized
// audio pipeline for one lead.
func (h *Handler) SendAudio(c *gin.Context) {
	var req leadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "leadId is required", nil)
		return
	}
	leadID, err := uuid.Parse(req.LeadID)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "leadId must be a valid UUID", nil)
		return
	}

	if h.enqueuer != nil {
		if err := h.enqueuer.EnqueueAudioAutomation(c.Request.Context(), leadID); err != nil {
			h.log.Error("failed to enqueue audio task", "lead_id", leadID, "error", err)
			httpkit.HandleError(c, apperr.Wrap(apperr.KindInternal, "failed to queue audio send", err))
			return
		}
		httpkit.JSON(c, http.StatusAccepted, gin.H{"success": true, "queued": true})
		return
	}

	result, err := h.service.SendPersonalizedAudio(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// SendWhatsApp delivers a diagnostic, challenge or custom message.
func (h *Handler) SendWhatsApp(c *gin.Context) {
	var req whatsappSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "leadId is required", nil)
		return
	}
	leadID, err := uuid.Parse(req.LeadID)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "leadId must be a valid UUID", nil)
		return
	}

	kind := KindCustom
	switch {
	case req.SendDiagnostico:
		kind = KindDiagnostic
	case req.SendChallenge:
		kind = KindChallenge
	}

	result, err := h.service.SendWhatsAppMessage(c.Request.Context(), leadID, kind, req.CustomMessage)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// TriggerAutomation re-fires the messaging automation for a lead.
func (h *Handler) TriggerAutomation(c *gin.Context) {
	var req leadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "leadId is required", nil)
		return
	}
	leadID, err := uuid.Parse(req.LeadID)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "leadId must be a valid UUID", nil)
		return
	}

	result, err := h.service.TriggerAutomationFor(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
