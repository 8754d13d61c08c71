// Package transport defines the wire representations for the leads module.
package transport

import (
	"time"

	"leads_dashboard_backend/internal/leads/repository"

	"github.com/google/uuid"
)

// LeadResponse is the JSON shape consumed by the dashboard. Field names
// follow the quiz form's Portuguese vocabulary, which the frontend expects.
type LeadResponse struct {
	ID                  uuid.UUID  `json:"id"`
	Nome                string     `json:"nome"`
	Email               *string    `json:"email"`
	Celular             *string    `json:"celular"`
	LeadScore           *int       `json:"lead_score"`
	WhatsAppStatus      *string    `json:"whatsapp_status"`
	StatusTags          *string    `json:"status_tags"`
	Prioridade          *string    `json:"prioridade"`
	ElementoPrincipal   *string    `json:"elemento_principal"`
	Quadrante           *string    `json:"quadrante"`
	IsHotLeadVIP        bool       `json:"is_hot_lead_vip"`
	IsAluno             bool       `json:"is_aluno"`
	IsAlunoBny2         bool       `json:"is_aluno_bny2"`
	DiagnosticoCompleto bool       `json:"diagnostico_completo"`
	ScriptAbertura      *string    `json:"script_abertura"`
	UltimaInteracao     *time.Time `json:"ultima_interacao"`
	CreatedAt           time.Time  `json:"created_at"`
}

// ListLeadsResponse wraps a filtered page of leads.
type ListLeadsResponse struct {
	Success bool           `json:"success"`
	Total   int            `json:"total"`
	Leads   []LeadResponse `json:"leads"`
}

// FindLeadRequest carries the lookup query parameters.
type FindLeadRequest struct {
	Phone string `form:"phone"`
	Email string `form:"email"`
}

// FromLead converts a repository row to its wire shape.
func FromLead(lead repository.Lead) LeadResponse {
	return LeadResponse{
		ID:                  lead.ID,
		Nome:                lead.Nome,
		Email:               lead.Email,
		Celular:             lead.Celular,
		LeadScore:           lead.LeadScore,
		WhatsAppStatus:      lead.WhatsAppStatus,
		StatusTags:          lead.StatusTags,
		Prioridade:          lead.Prioridade,
		ElementoPrincipal:   lead.ElementoPrincipal,
		Quadrante:           lead.Quadrante,
		IsHotLeadVIP:        lead.IsHotLeadVIP,
		IsAluno:             lead.IsAluno,
		IsAlunoBny2:         lead.IsAlunoBny2,
		DiagnosticoCompleto: lead.DiagnosticoCompleto,
		ScriptAbertura:      lead.ScriptAbertura,
		UltimaInteracao:     lead.UltimaInteracao,
		CreatedAt:           lead.CreatedAt,
	}
}

// FromLeads converts a repository page.
func FromLeads(leads []repository.Lead) []LeadResponse {
	out := make([]LeadResponse, 0, len(leads))
	for _, lead := range leads {
		out = append(out, FromLead(lead))
	}
	return out
}
