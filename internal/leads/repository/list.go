package repository

import (
	"context"
	"fmt"
	"strings"
)

// ListParams narrows the lead listing. Zero values mean "no filter".
type ListParams struct {
	Elemento   string
	Prioridade string
	Quadrante  string
	VIPOnly    bool
	Search     string
	SortBy     string // "created_at", "lead_score", "nome"
	SortDesc   bool
	Limit      int
	Offset     int
}

// List returns leads matching the filters plus the total match count.
func (r *Repository) List(ctx context.Context, params ListParams) ([]Lead, int, error) {
	conditions := make([]string, 0, 5)
	args := make([]any, 0, 5)

	addCondition := func(condition string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if params.Elemento != "" {
		addCondition("elemento_principal ILIKE $%d", params.Elemento)
	}
	if params.Prioridade != "" {
		addCondition("prioridade ILIKE $%d", params.Prioridade)
	}
	if params.Quadrante != "" {
		addCondition("quadrante = $%d", params.Quadrante)
	}
	if params.VIPOnly {
		conditions = append(conditions, "is_hot_lead_vip = true")
	}
	if params.Search != "" {
		pattern := "%" + params.Search + "%"
		args = append(args, pattern)
		idx := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(nome ILIKE $%d OR email ILIKE $%d OR celular ILIKE $%d)", idx, idx, idx))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM quiz_leads`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	orderBy := sortColumn(params.SortBy)
	direction := "ASC"
	if params.SortDesc {
		direction = "DESC"
	}

	limit := params.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	args = append(args, limit, params.Offset)
	query := fmt.Sprintf(
		`SELECT %s FROM quiz_leads%s ORDER BY %s %s, id LIMIT $%d OFFSET $%d`,
		leadColumns, where, orderBy, direction, len(args)-1, len(args),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads := make([]Lead, 0, limit)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, lead)
	}

	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return leads, total, nil
}

// sortColumn whitelists sortable columns. Anything unknown falls back to
// creation time.
func sortColumn(requested string) string {
	switch requested {
	case "lead_score":
		return "lead_score"
	case "nome":
		return "nome"
	default:
		return "created_at"
	}
}
