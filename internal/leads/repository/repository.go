// Package repository provides pgx-backed persistence for quiz leads and
// WhatsApp delivery logs.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Lead mirrors a row of quiz_leads. Free-form quiz fields arrive from the
// upstream form with inconsistent types, so quadrante and the calculated
// scores are kept as raw text and parsed where they are consumed.
type Lead struct {
	ID                   uuid.UUID
	Nome                 string
	Email                *string
	Celular              *string
	LeadScore            *int
	WhatsAppStatus       *string
	StatusTags           *string
	Prioridade           *string
	ElementoPrincipal    *string
	Quadrante            *string
	IntensidadeCalculada *string
	UrgenciaCalculada    *string
	IsHotLeadVIP         bool
	IsAluno              bool
	IsAlunoBny2          bool
	DiagnosticoCompleto  bool
	ScriptAbertura       *string
	UltimaInteracao      *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

const leadColumns = `
	id, nome, email, celular, lead_score, whatsapp_status, status_tags,
	prioridade, elemento_principal, quadrante, intensidade_calculada,
	urgencia_calculada, is_hot_lead_vip, is_aluno, is_aluno_bny2,
	diagnostico_completo, script_abertura, ultima_interacao, created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID, &lead.Nome, &lead.Email, &lead.Celular, &lead.LeadScore,
		&lead.WhatsAppStatus, &lead.StatusTags, &lead.Prioridade,
		&lead.ElementoPrincipal, &lead.Quadrante, &lead.IntensidadeCalculada,
		&lead.UrgenciaCalculada, &lead.IsHotLeadVIP, &lead.IsAluno,
		&lead.IsAlunoBny2, &lead.DiagnosticoCompleto, &lead.ScriptAbertura,
		&lead.UltimaInteracao, &lead.CreatedAt, &lead.UpdatedAt,
	)
	return lead, err
}

// GetByID loads a single lead.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM quiz_leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, err
	}
	return lead, nil
}

// FindByEmail matches a lead by case-insensitive email. Newest wins when
// the address was submitted more than once.
func (r *Repository) FindByEmail(ctx context.Context, email string) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM quiz_leads
		WHERE email ILIKE $1
		ORDER BY created_at DESC
		LIMIT 1
	`, email)
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, err
	}
	return lead, nil
}

// FindByPhoneDigits matches a lead whose stored number contains the given
// digit sequence. Stored numbers carry inconsistent formatting, so both
// sides are reduced to digits before comparing.
func (r *Repository) FindByPhoneDigits(ctx context.Context, digits string) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM quiz_leads
		WHERE regexp_replace(COALESCE(celular, ''), '\D', '', 'g') LIKE '%' || $1 || '%'
		ORDER BY created_at DESC
		LIMIT 1
	`, digits)
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, err
	}
	return lead, nil
}
