package metrics

import (
	"context"
	"strings"
	"time"

	"leads_dashboard_backend/internal/leads/repository"
	"leads_dashboard_backend/platform/config"
	"leads_dashboard_backend/platform/logger"

	"golang.org/x/sync/errgroup"
)

// CountSource is an optional external system contributing a single total
// (CRM contacts, group participants). Failures never break the aggregate.
type CountSource interface {
	Count(ctx context.Context) (int, error)
}

// Service assembles the dashboard snapshot.
type Service struct {
	store        Store
	crmContacts  CountSource
	groupMembers CountSource
	cfg          config.MetricsConfig
	log          *logger.Logger
	now          func() time.Time
}

// NewService constructs the metrics service. Either count source may be
// nil when the corresponding integration is not configured.
func NewService(store Store, crmContacts, groupMembers CountSource, cfg config.MetricsConfig, log *logger.Logger) *Service {
	return &Service{
		store:        store,
		crmContacts:  crmContacts,
		groupMembers: groupMembers,
		cfg:          cfg,
		log:          log,
		now:          time.Now,
	}
}

// Snapshot loads the full lead set and both external counts concurrently,
// then derives every aggregate. Only a store failure is surfaced; external
// enrichment failures degrade to zero and are noted in the result.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	loc := s.location()

	var (
		load      loadResult
		crmCount  int
		grpCount  int
		logs      []repository.WhatsAppLog
		fallbacks []string
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		result, err := loadAllLeads(groupCtx, s.store, s.log)
		if err != nil {
			return err
		}
		load = result
		return nil
	})

	var crmDegraded, grpDegraded, logsDegraded bool
	group.Go(func() error {
		crmCount, crmDegraded = s.fetchCount(groupCtx, "crm", s.crmContacts)
		return nil
	})
	group.Go(func() error {
		grpCount, grpDegraded = s.fetchCount(groupCtx, "groups", s.groupMembers)
		return nil
	})
	group.Go(func() error {
		rows, err := s.store.ListWhatsAppLogs(groupCtx, whatsappLogLimit)
		if err != nil {
			s.log.ExternalAPIError("whatsapp_logs", err)
			logsDegraded = true
			return nil
		}
		logs = rows
		return nil
	})

	if err := group.Wait(); err != nil {
		return Snapshot{}, err
	}

	if load.UsedFallback {
		fallbacks = append(fallbacks, "reduced projection load")
	}
	if crmDegraded {
		fallbacks = append(fallbacks, "crm count unavailable")
	}
	if grpDegraded {
		fallbacks = append(fallbacks, "group count unavailable")
	}
	if logsDegraded {
		fallbacks = append(fallbacks, "whatsapp log unavailable")
	}

	now := s.now()
	leads := load.Leads
	diagnostics := len(leads)
	if load.HeadCount > diagnostics {
		diagnostics = load.HeadCount
	}

	snapshot := Snapshot{
		TotalLeads:     len(leads),
		VIPs:           countVIPs(leads),
		Alunos:         countStudents(leads),
		MediaLeadScore: averageScore(leads),
		Prioridades:    buildPriorityDistribution(leads),
		Elementos:      buildElementDistribution(leads),
		StatusTags:     buildTagDistribution(leads),
		Quadrantes:     buildQuadrantDistribution(leads, s.cfg.GetQuadrantIntensityThreshold()),
		Funil:          buildFunnel(diagnostics, crmCount, grpCount),
		SerieDiaria:    buildTimeSeries(leads, s.cfg.GetTimeSeriesDays(), now, loc),
		WhatsApp:       buildWhatsAppStats(logs),
		VIPsRecentes:   recentVIPs(leads, now),
		ResumoDiario:   buildDailySummary(leads, now, loc),
		Degraded:       len(fallbacks) > 0,
		Note:           strings.Join(fallbacks, "; "),
		GeneratedAt:    now,
	}

	return snapshot, nil
}

// fetchCount queries one external count source with its own timeout.
// Missing sources, errors and timeouts all resolve to zero.
func (s *Service) fetchCount(ctx context.Context, name string, source CountSource) (int, bool) {
	if source == nil {
		return 0, true
	}

	timeout := s.cfg.GetExternalFetchTimeout()
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	count, err := source.Count(fetchCtx)
	if err != nil {
		s.log.ExternalAPIError(name, err)
		return 0, true
	}
	if count < 0 {
		count = 0
	}
	return count, false
}

func (s *Service) location() *time.Location {
	loc, err := time.LoadLocation(s.cfg.GetReportTimeZone())
	if err != nil {
		s.log.Warn("invalid report timezone, falling back to UTC", "timezone", s.cfg.GetReportTimeZone())
		return time.UTC
	}
	return loc
}
