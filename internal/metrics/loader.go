// Package metrics computes the dashboard aggregate: distributions, quadrant
// breakdown, funnel and time series over the full lead set, enriched by two
// optional external counts.
package metrics

import (
	"context"

	"leads_dashboard_backend/internal/leads/repository"
	"leads_dashboard_backend/platform/logger"
)

const (
	pageSize           = 1000
	fallbackRangeLimit = 10000
	whatsappLogLimit   = 10000
)

// Store is the paginated record source the loader reads from.
type Store interface {
	CountLeads(ctx context.Context) (int, error)
	FetchLeadRange(ctx context.Context, offset, limit int, columns []string) ([]repository.Lead, error)
	ListWhatsAppLogs(ctx context.Context, limit int) ([]repository.WhatsAppLog, error)
}

// reducedColumns is the narrow projection used by the one-shot recovery
// fetch. A single inaccessible column in the full projection can null out
// every row upstream; retrying with the essentials recovers the aggregate.
var reducedColumns = []string{
	"id", "created_at", "lead_score", "prioridade", "elemento_principal",
	"quadrante", "is_hot_lead_vip", "status_tags",
}

// loadResult is the outcome of one full batch load.
type loadResult struct {
	Leads        []repository.Lead
	HeadCount    int
	UsedFallback bool
}

// loadAllLeads pages through the store sequentially and returns the full
// set. A failing count probe or page fetch aborts the load. If pagination
// assembles zero rows while the probe reported a positive count, exactly one
// reduced-projection fetch over a single wide range is attempted.
func loadAllLeads(ctx context.Context, store Store, log *logger.Logger) (loadResult, error) {
	headCount, err := store.CountLeads(ctx)
	if err != nil {
		return loadResult{}, err
	}

	leads := make([]repository.Lead, 0, headCount)
	for offset := 0; ; offset += pageSize {
		page, err := store.FetchLeadRange(ctx, offset, pageSize, nil)
		if err != nil {
			return loadResult{}, err
		}
		leads = append(leads, page...)
		if len(page) < pageSize {
			break
		}
	}

	result := loadResult{Leads: leads, HeadCount: headCount}

	if len(leads) == 0 && headCount > 0 {
		log.Warn("batch load returned zero rows despite positive count, retrying with reduced projection",
			"head_count", headCount)
		fallback, err := store.FetchLeadRange(ctx, 0, fallbackRangeLimit, reducedColumns)
		if err != nil {
			return loadResult{}, err
		}
		result.Leads = fallback
		result.UsedFallback = true
	}

	return result, nil
}
