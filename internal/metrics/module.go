package metrics

import (
	apphttp "leads_dashboard_backend/internal/http"
	"leads_dashboard_backend/platform/config"
	"leads_dashboard_backend/platform/logger"
)

// Module bundles the metrics service and handler.
type Module struct {
	service *Service
	handler *Handler
}

// NewModule constructs the metrics module. Count sources may be nil when
// the corresponding integration is unconfigured.
func NewModule(store Store, crmContacts, groupMembers CountSource, cfg config.MetricsConfig, log *logger.Logger) *Module {
	service := NewService(store, crmContacts, groupMembers, cfg, log)
	return &Module{
		service: service,
		handler: NewHandler(service),
	}
}

// Name identifies the module in logs.
func (m *Module) Name() string { return "metrics" }

// RegisterRoutes mounts GET /api/v1/metrics.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/metrics", m.handler.Get)
}

// Service exposes the snapshot computation for non-HTTP consumers
// (CLI snapshot tool, daily summary email).
func (m *Module) Service() *Service {
	return m.service
}
