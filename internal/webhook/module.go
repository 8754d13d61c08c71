package webhook

import (
	"leads_dashboard_backend/internal/events"
	internalhttp "leads_dashboard_backend/internal/http"
	"leads_dashboard_backend/platform/logger"
)

// Module bundles the webhook endpoints behind the HTTP module interface.
type Module struct {
	handler *Handler
}

// NewModule wires the webhook module.
func NewModule(repo LeadFinder, bus events.Bus, log *logger.Logger) *Module {
	return &Module{handler: NewHandler(repo, bus, log)}
}

// Name implements the http.Module interface.
func (m *Module) Name() string { return "webhook" }

// RegisterRoutes mounts the webhook endpoints on the rate-limited group.
func (m *Module) RegisterRoutes(ctx *internalhttp.RouterContext) {
	ctx.Webhooks.POST("/student-status", m.handler.UpdateStudentStatus)
	ctx.Webhooks.GET("/student-status", m.handler.Status)
}
