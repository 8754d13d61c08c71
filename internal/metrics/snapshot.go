package metrics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"leads_dashboard_backend/internal/leads/repository"
	"leads_dashboard_backend/platform/textnorm"

	"github.com/google/uuid"
)

// Snapshot is the full dashboard aggregate. It is recomputed on every
// request and never persisted.
type Snapshot struct {
	TotalLeads     int             `json:"total_leads"`
	VIPs           int             `json:"vips"`
	Alunos         int             `json:"alunos"`
	MediaLeadScore string          `json:"media_lead_score"`
	Prioridades    map[string]int  `json:"prioridades"`
	Elementos      map[string]int  `json:"elementos"`
	StatusTags     []TagCount      `json:"status_tags"`
	Quadrantes     []QuadrantCount `json:"quadrantes"`
	Funil          Funnel          `json:"funil"`
	SerieDiaria    []DayCount      `json:"serie_diaria"`
	WhatsApp       WhatsAppStats   `json:"whatsapp"`
	VIPsRecentes   []RecentVIP     `json:"vips_recentes"`
	ResumoDiario   DailySummary    `json:"resumo_diario"`
	Degraded       bool            `json:"degraded"`
	Note           string          `json:"note,omitempty"`
	GeneratedAt    time.Time       `json:"generated_at"`
}

// WhatsAppStats summarizes the delivery log.
type WhatsAppStats struct {
	Total       int    `json:"total"`
	Sucessos    int    `json:"sucessos"`
	TaxaSucesso string `json:"taxa_sucesso"`
}

// RecentVIP is a hot lead that arrived in the last 24 hours.
type RecentVIP struct {
	ID        uuid.UUID `json:"id"`
	Nome      string    `json:"nome"`
	Celular   *string   `json:"celular"`
	LeadScore *int      `json:"lead_score"`
	CreatedAt time.Time `json:"created_at"`
}

// DailySummary counts today's arrivals in the reference timezone.
type DailySummary struct {
	Data       string `json:"data"`
	NovosLeads int    `json:"novos_leads"`
	NovosVIPs  int    `json:"novos_vips"`
}

// priority buckets; anything unrecognized or empty collapses into SEM.
var priorityBuckets = []string{"ALTA", "MEDIA", "BAIXA", "SEM"}

// buildPriorityDistribution puts every lead in exactly one bucket.
func buildPriorityDistribution(leads []repository.Lead) map[string]int {
	distribution := make(map[string]int, len(priorityBuckets))
	for _, bucket := range priorityBuckets {
		distribution[bucket] = 0
	}

	for _, lead := range leads {
		bucket := "SEM"
		if lead.Prioridade != nil {
			switch canonical := textnorm.Canonical(*lead.Prioridade); canonical {
			case "ALTA", "MEDIA", "BAIXA":
				bucket = canonical
			}
		}
		distribution[bucket]++
	}

	return distribution
}

// buildElementDistribution groups by the raw element label, verbatim.
func buildElementDistribution(leads []repository.Lead) map[string]int {
	distribution := make(map[string]int)
	for _, lead := range leads {
		if lead.ElementoPrincipal == nil || strings.TrimSpace(*lead.ElementoPrincipal) == "" {
			continue
		}
		distribution[*lead.ElementoPrincipal]++
	}
	return distribution
}

// averageScore formats the mean lead score. Leads without a score are
// excluded from the mean, not counted as zero.
func averageScore(leads []repository.Lead) string {
	var sum, scored int
	for _, lead := range leads {
		if lead.LeadScore != nil {
			sum += *lead.LeadScore
			scored++
		}
	}
	if scored == 0 {
		return "0"
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(scored))
}

// successStatuses are the whatsapp_logs outcomes counted as delivered.
var successStatuses = map[string]bool{
	"sent":                true,
	"resultados_enviados": true,
	"desafio_enviado":     true,
}

// buildWhatsAppStats derives delivery success rates from the log rows.
func buildWhatsAppStats(logs []repository.WhatsAppLog) WhatsAppStats {
	var successes int
	for _, log := range logs {
		if successStatuses[strings.ToLower(strings.TrimSpace(log.Status))] {
			successes++
		}
	}
	return WhatsAppStats{
		Total:       len(logs),
		Sucessos:    successes,
		TaxaSucesso: formatRate(successes, len(logs)),
	}
}

// recentVIPs returns hot leads from the trailing 24 hours, newest first,
// capped at 10.
func recentVIPs(leads []repository.Lead, now time.Time) []RecentVIP {
	cutoff := now.Add(-24 * time.Hour)

	vips := make([]RecentVIP, 0, 10)
	for _, lead := range leads {
		if !lead.IsHotLeadVIP || lead.CreatedAt.Before(cutoff) {
			continue
		}
		vips = append(vips, RecentVIP{
			ID:        lead.ID,
			Nome:      lead.Nome,
			Celular:   lead.Celular,
			LeadScore: lead.LeadScore,
			CreatedAt: lead.CreatedAt,
		})
	}

	sort.Slice(vips, func(i, j int) bool {
		return vips[i].CreatedAt.After(vips[j].CreatedAt)
	})

	if len(vips) > 10 {
		vips = vips[:10]
	}
	return vips
}

// buildDailySummary counts today's arrivals in the reference timezone.
func buildDailySummary(leads []repository.Lead, now time.Time, loc *time.Location) DailySummary {
	today := dayKey(now, loc)

	summary := DailySummary{Data: today.Format("2006-01-02")}
	for _, lead := range leads {
		if !dayKey(lead.CreatedAt, loc).Equal(today) {
			continue
		}
		summary.NovosLeads++
		if lead.IsHotLeadVIP {
			summary.NovosVIPs++
		}
	}
	return summary
}

func countVIPs(leads []repository.Lead) int {
	var count int
	for _, lead := range leads {
		if lead.IsHotLeadVIP {
			count++
		}
	}
	return count
}

func countStudents(leads []repository.Lead) int {
	var count int
	for _, lead := range leads {
		if lead.IsAluno || lead.IsAlunoBny2 {
			count++
		}
	}
	return count
}
