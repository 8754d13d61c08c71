package repository

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// AllLeadColumns is the full projection used by the metrics batch loader.
var AllLeadColumns = []string{
	"id", "nome", "email", "celular", "lead_score", "whatsapp_status",
	"status_tags", "prioridade", "elemento_principal", "quadrante",
	"intensidade_calculada", "urgencia_calculada", "is_hot_lead_vip",
	"is_aluno", "is_aluno_bny2", "diagnostico_completo", "script_abertura",
	"ultima_interacao", "created_at",
}

// CountLeads returns the total number of quiz leads. Serves as the
// head-count probe for the paginated loader.
func (r *Repository) CountLeads(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM quiz_leads`).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// FetchLeadRange loads one page of leads with the requested projection.
// Ordering by id keeps pages stable across sequential fetches. Columns
// outside the known set are rejected.
func (r *Repository) FetchLeadRange(ctx context.Context, offset, limit int, columns []string) ([]Lead, error) {
	if len(columns) == 0 {
		columns = AllLeadColumns
	}

	for _, column := range columns {
		if !knownLeadColumn(column) {
			return nil, fmt.Errorf("unknown lead column %q", column)
		}
	}

	query := fmt.Sprintf(
		`SELECT %s FROM quiz_leads ORDER BY id LIMIT $1 OFFSET $2`,
		strings.Join(columns, ", "),
	)

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]Lead, 0, limit)
	for rows.Next() {
		var lead Lead
		targets := make([]any, len(columns))
		for i, column := range columns {
			targets[i] = leadFieldTarget(&lead, column)
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return leads, nil
}

// WhatsAppLog mirrors a row of whatsapp_logs.
type WhatsAppLog struct {
	Status    string
	CreatedAt time.Time
}

// ListWhatsAppLogs returns delivery log rows, newest first, capped at limit.
func (r *Repository) ListWhatsAppLogs(ctx context.Context, limit int) ([]WhatsAppLog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, created_at
		FROM whatsapp_logs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]WhatsAppLog, 0)
	for rows.Next() {
		var log WhatsAppLog
		if err := rows.Scan(&log.Status, &log.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return logs, nil
}

func knownLeadColumn(column string) bool {
	for _, known := range AllLeadColumns {
		if column == known {
			return true
		}
	}
	return false
}

func leadFieldTarget(lead *Lead, column string) any {
	switch column {
	case "id":
		return &lead.ID
	case "nome":
		return &lead.Nome
	case "email":
		return &lead.Email
	case "celular":
		return &lead.Celular
	case "lead_score":
		return &lead.LeadScore
	case "whatsapp_status":
		return &lead.WhatsAppStatus
	case "status_tags":
		return &lead.StatusTags
	case "prioridade":
		return &lead.Prioridade
	case "elemento_principal":
		return &lead.ElementoPrincipal
	case "quadrante":
		return &lead.Quadrante
	case "intensidade_calculada":
		return &lead.IntensidadeCalculada
	case "urgencia_calculada":
		return &lead.UrgenciaCalculada
	case "is_hot_lead_vip":
		return &lead.IsHotLeadVIP
	case "is_aluno":
		return &lead.IsAluno
	case "is_aluno_bny2":
		return &lead.IsAlunoBny2
	case "diagnostico_completo":
		return &lead.DiagnosticoCompleto
	case "script_abertura":
		return &lead.ScriptAbertura
	case "ultima_interacao":
		return &lead.UltimaInteracao
	case "created_at":
		return &lead.CreatedAt
	default:
		return nil
	}
}
