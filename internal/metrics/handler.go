package metrics

import (
	"leads_dashboard_backend/platform/apperr"
	"leads_dashboard_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler exposes the metrics aggregate over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Get computes and returns the dashboard snapshot.
func (h *Handler) Get(c *gin.Context) {
	snapshot, err := h.service.Snapshot(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindInternal, "failed to compute metrics", err))
		return
	}

	httpkit.OK(c, gin.H{"success": true, "metrics": snapshot})
}
