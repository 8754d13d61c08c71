package repository

import (
	"context"

	"github.com/google/uuid"
)

// StudentFlagUpdate carries partial flag changes. Nil fields stay untouched.
type StudentFlagUpdate struct {
	IsAluno     *bool
	IsAlunoBny2 *bool
}

// UpdateStudentFlags applies enrollment flag changes to a lead.
func (r *Repository) UpdateStudentFlags(ctx context.Context, id uuid.UUID, update StudentFlagUpdate) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE quiz_leads
		SET is_aluno = COALESCE($2, is_aluno),
			is_aluno_bny2 = COALESCE($3, is_aluno_bny2),
			updated_at = now()
		WHERE id = $1
	`, id, update.IsAluno, update.IsAlunoBny2)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateWhatsAppStatus sets the delivery status and stamps the interaction time.
func (r *Repository) UpdateWhatsAppStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE quiz_leads
		SET whatsapp_status = $2,
			ultima_interacao = now(),
			updated_at = now()
		WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertWhatsAppLog records a delivery attempt outcome.
func (r *Repository) InsertWhatsAppLog(ctx context.Context, leadID uuid.UUID, phone, status, message string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO whatsapp_logs (lead_id, phone, status, message)
		VALUES ($1, $2, $3, $4)
	`, leadID, phone, status, message)
	return err
}
