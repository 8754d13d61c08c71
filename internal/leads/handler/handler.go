// Package handler exposes the leads HTTP surface: listing, CSV export and
// flexible single-lead lookup.
package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"leads_dashboard_backend/internal/leads/repository"
	"leads_dashboard_backend/internal/leads/transport"
	"leads_dashboard_backend/platform/apperr"
	"leads_dashboard_backend/platform/httpkit"
	"leads_dashboard_backend/platform/phone"
	"leads_dashboard_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repo *repository.Repository
	val  *validator.Validator
}

func New(repo *repository.Repository, val *validator.Validator) *Handler {
	return &Handler{repo: repo, val: val}
}

// RegisterRoutes mounts the leads endpoints on the given group.
func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("", h.List)
	group.GET("/export.csv", h.ExportCSV)
	group.GET("/find", h.Find)
}

// List returns a filtered, sorted page of leads.
func (h *Handler) List(c *gin.Context) {
	params := listParamsFromQuery(c)

	leads, total, err := h.repo.List(c.Request.Context(), params)
	if err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindInternal, "failed to list leads", err))
		return
	}

	httpkit.OK(c, transport.ListLeadsResponse{
		Success: true,
		Total:   total,
		Leads:   transport.FromLeads(leads),
	})
}

// ExportCSV streams the filtered set as a CSV download.
func (h *Handler) ExportCSV(c *gin.Context) {
	params := listParamsFromQuery(c)
	params.Limit = 10000
	params.Offset = 0

	leads, _, err := h.repo.List(c.Request.Context(), params)
	if err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindInternal, "failed to export leads", err))
		return
	}

	filename := fmt.Sprintf("leads-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	writer := csv.NewWriter(c.Writer)
	_ = writer.Write([]string{
		"nome", "email", "celular", "lead_score", "whatsapp_status",
		"status_tags", "prioridade", "elemento_principal", "quadrante",
		"vip", "aluno", "diagnostico_completo", "created_at",
	})

	for _, lead := range leads {
		_ = writer.Write([]string{
			lead.Nome,
			deref(lead.Email),
			deref(lead.Celular),
			derefInt(lead.LeadScore),
			deref(lead.WhatsAppStatus),
			deref(lead.StatusTags),
			deref(lead.Prioridade),
			deref(lead.ElementoPrincipal),
			deref(lead.Quadrante),
			strconv.FormatBool(lead.IsHotLeadVIP),
			strconv.FormatBool(lead.IsAluno || lead.IsAlunoBny2),
			strconv.FormatBool(lead.DiagnosticoCompleto),
			lead.CreatedAt.Format(time.RFC3339),
		})
	}
	writer.Flush()
}

// Find looks up a single lead by phone digits or email.
func (h *Handler) Find(c *gin.Context) {
	var req transport.FindLeadRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid query parameters"))
		return
	}

	if req.Phone == "" && req.Email == "" {
		httpkit.HandleError(c, apperr.BadRequest("phone or email is required"))
		return
	}

	var (
		lead repository.Lead
		err  error
	)
	if req.Phone != "" {
		digits := phone.Digits(req.Phone)
		if len(digits) < 8 {
			httpkit.HandleError(c, apperr.BadRequest("phone number too short"))
			return
		}
		lead, err = h.repo.FindByPhoneDigits(c.Request.Context(), digits)
	} else {
		email := strings.TrimSpace(req.Email)
		if err := h.val.Var(email, "email"); err != nil {
			httpkit.HandleError(c, apperr.BadRequest("invalid email address"))
			return
		}
		lead, err = h.repo.FindByEmail(c.Request.Context(), email)
	}

	if err == repository.ErrNotFound {
		httpkit.HandleError(c, apperr.NotFound("lead not found"))
		return
	}
	if err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindInternal, "failed to find lead", err))
		return
	}

	httpkit.OK(c, gin.H{"success": true, "lead": transport.FromLead(lead)})
}

func listParamsFromQuery(c *gin.Context) repository.ListParams {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	return repository.ListParams{
		Elemento:   c.Query("elemento"),
		Prioridade: c.Query("prioridade"),
		Quadrante:  c.Query("quadrante"),
		VIPOnly:    strings.EqualFold(c.Query("vip"), "true"),
		Search:     strings.TrimSpace(c.Query("search")),
		SortBy:     c.DefaultQuery("sort", "created_at"),
		SortDesc:   !strings.EqualFold(c.DefaultQuery("order", "desc"), "asc"),
		Limit:      limit,
		Offset:     offset,
	}
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func derefInt(value *int) string {
	if value == nil {
		return ""
	}
	return strconv.Itoa(*value)
}
