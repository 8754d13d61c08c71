// Package leads wires the lead store and its dashboard HTTP surface.
package leads

import (
	apphttp "leads_dashboard_backend/internal/http"
	"leads_dashboard_backend/internal/leads/handler"
	"leads_dashboard_backend/internal/leads/repository"
	"leads_dashboard_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module bundles the leads repository and handler.
type Module struct {
	repo    *repository.Repository
	handler *handler.Handler
}

// NewModule constructs the leads module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	return &Module{
		repo:    repo,
		handler: handler.New(repo, val),
	}
}

// Name identifies the module in logs.
func (m *Module) Name() string { return "leads" }

// RegisterRoutes mounts the leads endpoints under /api/v1/leads.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/leads"))
}

// Repository exposes the store for sibling modules (metrics, webhook, audio).
func (m *Module) Repository() *repository.Repository {
	return m.repo
}
