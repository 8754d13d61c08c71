package webhook

import (
	"context"
	"io"
	"net/http"
	"strings"

	"leads_dashboard_backend/internal/events"
	"leads_dashboard_backend/internal/leads/repository"
	"leads_dashboard_backend/platform/httpkit"
	"leads_dashboard_backend/platform/logger"
	"leads_dashboard_backend/platform/phone"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxBodySize bounds inbound webhook payloads. CRM events are small.
const maxBodySize = 64 << 10

// minPhoneDigits is the shortest digit string worth matching against the
// leads table; anything shorter produces too many false positives.
const minPhoneDigits = 10

// LeadFinder is the persistence surface the webhook needs.
type LeadFinder interface {
	FindByEmail(ctx context.Context, email string) (repository.Lead, error)
	FindByPhoneDigits(ctx context.Context, digits string) (repository.Lead, error)
	UpdateStudentFlags(ctx context.Context, id uuid.UUID, update repository.StudentFlagUpdate) error
}

// Handler processes student-status webhooks from the CRM.
type Handler struct {
	repo LeadFinder
	bus  events.Bus
	log  *logger.Logger
}

// NewHandler builds the handler.
func NewHandler(repo LeadFinder, bus events.Bus, log *logger.Logger) *Handler {
	return &Handler{repo: repo, bus: bus, log: log}
}

// UpdateStudentStatus handles a CRM list-subscribe event: it locates the
// lead by email or phone and flags it as an enrolled student based on the
// list name. Unmatched contacts are acknowledged as ignored so the CRM
// does not retry.
func (h *Handler) UpdateStudentStatus(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodySize))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "failed to read webhook body", nil)
		return
	}

	payload, err := Extract(c.GetHeader("Content-Type"), body)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "unparseable webhook payload", nil)
		return
	}
	if !payload.HasContact() {
		httpkit.Error(c, http.StatusBadRequest, "no contact in payload", nil)
		return
	}

	ctx := c.Request.Context()
	lead, searchMethod, found := h.findLead(ctx, payload.Contact)
	if !found {
		h.log.WebhookEvent("student-status", "ignored", false)
		httpkit.OK(c, gin.H{
			"message": "lead not found",
			"email":   payload.Contact.Email,
			"phone":   payload.Contact.Phone,
			"action":  "ignored",
		})
		return
	}

	update := flagsForList(payload.List.Name)
	if err := h.repo.UpdateStudentFlags(ctx, lead.ID, update); err != nil {
		h.log.DatabaseError("update student flags", err)
		httpkit.Error(c, http.StatusInternalServerError, "failed to update lead", nil)
		return
	}

	h.log.WebhookEvent("student-status", "updated", true)

	if h.bus != nil {
		h.bus.Publish(context.Background(), events.StudentFlagged{
			BaseEvent:    events.NewBaseEvent(),
			LeadID:       lead.ID,
			Email:        payload.Contact.Email,
			Phone:        payload.Contact.Phone,
			ListName:     payload.List.Name,
			LegacyCohort: update.IsAlunoBny2 != nil,
		})
	}

	httpkit.OK(c, gin.H{
		"success":      true,
		"message":      "lead updated",
		"lead":         gin.H{"id": lead.ID, "nome": lead.Nome},
		"searchMethod": searchMethod,
		"updates":      update,
		"webhook_type": payload.Type,
		"list":         gin.H{"id": payload.List.ID, "name": payload.List.Name},
	})
}

// Status answers GET probes so the CRM webhook configuration can be
// verified without firing an event.
func (h *Handler) Status(c *gin.Context) {
	httpkit.OK(c, gin.H{
		"status":   "active",
		"endpoint": "/api/v1/webhook/student-status",
	})
}

// findLead matches the webhook contact against the leads table, by email
// first and then by phone digits.
func (h *Handler) findLead(ctx context.Context, contact Contact) (repository.Lead, string, bool) {
	if contact.Email != "" {
		lead, err := h.repo.FindByEmail(ctx, contact.Email)
		if err == nil {
			return lead, "email", true
		}
		if err != repository.ErrNotFound {
			h.log.DatabaseError("find lead by email", err)
		}
	}

	if digits := phone.Digits(contact.Phone); len(digits) >= minPhoneDigits {
		lead, err := h.repo.FindByPhoneDigits(ctx, digits)
		if err == nil {
			return lead, "telefone", true
		}
		if err != repository.ErrNotFound {
			h.log.DatabaseError("find lead by phone", err)
		}
	}

	return repository.Lead{}, "", false
}

// flagsForList maps a CRM list name to enrollment flags. Legacy cohort
// lists carry "bny" in the name; anything else flags the general student
// bit, including lists the mapping does not recognize.
func flagsForList(listName string) repository.StudentFlagUpdate {
	name := strings.ToLower(listName)
	yes := true

	var update repository.StudentFlagUpdate
	if strings.Contains(name, "bny") {
		update.IsAlunoBny2 = &yes
	}
	if strings.Contains(name, "aluno") || strings.Contains(name, "student") {
		update.IsAluno = &yes
	}
	if update.IsAluno == nil && update.IsAlunoBny2 == nil {
		update.IsAluno = &yes
	}
	return update
}
