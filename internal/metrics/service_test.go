package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"leads_dashboard_backend/internal/leads/repository"
	"leads_dashboard_backend/platform/logger"

	"github.com/google/uuid"
)

// fakeStore serves canned pages keyed by offset.
type fakeStore struct {
	count         int
	countErr      error
	pages         map[int][]repository.Lead
	fetchErr      error
	fallbackLeads []repository.Lead
	fallbackCalls int
	logs          []repository.WhatsAppLog
	logsErr       error
}

func (f *fakeStore) CountLeads(ctx context.Context) (int, error) {
	return f.count, f.countErr
}

func (f *fakeStore) FetchLeadRange(ctx context.Context, offset, limit int, columns []string) ([]repository.Lead, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if columns != nil {
		f.fallbackCalls++
		return f.fallbackLeads, nil
	}
	return f.pages[offset], nil
}

func (f *fakeStore) ListWhatsAppLogs(ctx context.Context, limit int) ([]repository.WhatsAppLog, error) {
	return f.logs, f.logsErr
}

type fakeCountSource struct {
	count int
	err   error
	delay time.Duration
}

func (f *fakeCountSource) Count(ctx context.Context) (int, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return f.count, f.err
}

type fakeMetricsConfig struct {
	timeout time.Duration
}

func (f *fakeMetricsConfig) GetQuadrantIntensityThreshold() float64 { return 70 }
func (f *fakeMetricsConfig) GetExternalFetchTimeout() time.Duration {
	if f.timeout > 0 {
		return f.timeout
	}
	return 4 * time.Second
}
func (f *fakeMetricsConfig) GetReportTimeZone() string { return "UTC" }
func (f *fakeMetricsConfig) GetTimeSeriesDays() int    { return 30 }

func newTestService(store Store, crm, groups CountSource, timeout time.Duration) *Service {
	return NewService(store, crm, groups, &fakeMetricsConfig{timeout: timeout}, logger.New("development"))
}

func makeLeads(n int) []repository.Lead {
	leads := make([]repository.Lead, n)
	for i := range leads {
		leads[i] = repository.Lead{ID: uuid.New(), CreatedAt: time.Now()}
	}
	return leads
}

func TestLoadAllLeadsPagination(t *testing.T) {
	store := &fakeStore{
		count: 1005,
		pages: map[int][]repository.Lead{
			0:    makeLeads(1000),
			1000: makeLeads(5),
		},
	}

	result, err := loadAllLeads(context.Background(), store, logger.New("development"))
	if err != nil {
		t.Fatalf("loadAllLeads: %v", err)
	}
	if len(result.Leads) != 1005 {
		t.Errorf("loaded %d leads, want 1005", len(result.Leads))
	}
	if result.UsedFallback {
		t.Error("fallback must not trigger on a successful load")
	}
	if result.HeadCount != 1005 {
		t.Errorf("head count = %d, want 1005", result.HeadCount)
	}
}

func TestLoadAllLeadsFallbackOnce(t *testing.T) {
	store := &fakeStore{
		count:         42,
		pages:         map[int][]repository.Lead{},
		fallbackLeads: makeLeads(3),
	}

	result, err := loadAllLeads(context.Background(), store, logger.New("development"))
	if err != nil {
		t.Fatalf("loadAllLeads: %v", err)
	}
	if !result.UsedFallback {
		t.Error("expected fallback to trigger")
	}
	if store.fallbackCalls != 1 {
		t.Errorf("fallback fetches = %d, want exactly 1", store.fallbackCalls)
	}
	if len(result.Leads) != 3 {
		t.Errorf("loaded %d leads from fallback, want 3", len(result.Leads))
	}
}

func TestLoadAllLeadsNoFallbackOnZeroCount(t *testing.T) {
	store := &fakeStore{count: 0, pages: map[int][]repository.Lead{}}

	result, err := loadAllLeads(context.Background(), store, logger.New("development"))
	if err != nil {
		t.Fatalf("loadAllLeads: %v", err)
	}
	if result.UsedFallback || store.fallbackCalls != 0 {
		t.Error("fallback must not trigger when the store is genuinely empty")
	}
}

func TestLoadAllLeadsCountErrorIsFatal(t *testing.T) {
	store := &fakeStore{countErr: errors.New("connection refused")}

	if _, err := loadAllLeads(context.Background(), store, logger.New("development")); err == nil {
		t.Fatal("expected count probe error to surface")
	}
}

func TestSnapshotAggregates(t *testing.T) {
	now := time.Now()
	leads := []repository.Lead{
		{ID: uuid.New(), Nome: "A", LeadScore: intPtr(80), Prioridade: strPtr("ALTA"), IsHotLeadVIP: true, CreatedAt: now},
		{ID: uuid.New(), Nome: "B", LeadScore: intPtr(40), Prioridade: strPtr("média"), CreatedAt: now},
		{ID: uuid.New(), Nome: "C", Prioridade: strPtr(""), IsAluno: true, CreatedAt: now},
	}
	store := &fakeStore{
		count: 3,
		pages: map[int][]repository.Lead{0: leads},
		logs: []repository.WhatsAppLog{
			{Status: "sent", CreatedAt: now},
			{Status: "failed", CreatedAt: now},
		},
	}

	service := newTestService(store, &fakeCountSource{count: 250}, &fakeCountSource{count: 2}, 0)

	snapshot, err := service.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	if snapshot.TotalLeads != 3 {
		t.Errorf("TotalLeads = %d, want 3", snapshot.TotalLeads)
	}
	if snapshot.VIPs != 1 {
		t.Errorf("VIPs = %d, want 1", snapshot.VIPs)
	}
	if snapshot.Alunos != 1 {
		t.Errorf("Alunos = %d, want 1", snapshot.Alunos)
	}
	if snapshot.MediaLeadScore != "60.0" {
		t.Errorf("MediaLeadScore = %q, want %q (nil scores excluded)", snapshot.MediaLeadScore, "60.0")
	}
	if snapshot.Prioridades["ALTA"] != 1 || snapshot.Prioridades["MEDIA"] != 1 || snapshot.Prioridades["SEM"] != 1 {
		t.Errorf("priority distribution = %v", snapshot.Prioridades)
	}
	if snapshot.Funil.CadastrosCRM != 250 {
		t.Errorf("CadastrosCRM = %d, want 250", snapshot.Funil.CadastrosCRM)
	}
	if snapshot.Funil.Grupos != 2 {
		t.Errorf("Grupos = %d, want 2", snapshot.Funil.Grupos)
	}
	if snapshot.WhatsApp.TaxaSucesso != "50.0" {
		t.Errorf("TaxaSucesso = %q, want %q", snapshot.WhatsApp.TaxaSucesso, "50.0")
	}
	if len(snapshot.VIPsRecentes) != 1 {
		t.Errorf("VIPsRecentes = %d entries, want 1", len(snapshot.VIPsRecentes))
	}
	if snapshot.Degraded {
		t.Errorf("snapshot unexpectedly degraded: %s", snapshot.Note)
	}
}

func TestSnapshotExternalTimeoutResolvesToZero(t *testing.T) {
	store := &fakeStore{count: 1, pages: map[int][]repository.Lead{0: makeLeads(1)}}
	slow := &fakeCountSource{count: 99, delay: 500 * time.Millisecond}

	service := newTestService(store, slow, &fakeCountSource{count: 7}, 20*time.Millisecond)

	start := time.Now()
	snapshot, err := service.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Errorf("snapshot blocked on slow fetcher for %v", elapsed)
	}
	if snapshot.Funil.CadastrosCRM != 0 {
		t.Errorf("CadastrosCRM = %d, want 0 after timeout", snapshot.Funil.CadastrosCRM)
	}
	if snapshot.Funil.Grupos != 7 {
		t.Errorf("Grupos = %d, want 7 from the healthy fetcher", snapshot.Funil.Grupos)
	}
	if !snapshot.Degraded {
		t.Error("snapshot must be flagged degraded after a fetch timeout")
	}
}

func TestSnapshotNilSourcesDegradeToZero(t *testing.T) {
	store := &fakeStore{count: 1, pages: map[int][]repository.Lead{0: makeLeads(1)}}
	service := newTestService(store, nil, nil, 0)

	snapshot, err := service.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snapshot.Funil.CadastrosCRM != 0 || snapshot.Funil.Grupos != 0 {
		t.Errorf("unconfigured sources must contribute zero, got %d/%d",
			snapshot.Funil.CadastrosCRM, snapshot.Funil.Grupos)
	}
}

func TestSnapshotStoreErrorSurfaces(t *testing.T) {
	store := &fakeStore{count: 10, fetchErr: errors.New("boom")}
	service := newTestService(store, nil, nil, 0)

	if _, err := service.Snapshot(context.Background()); err == nil {
		t.Fatal("expected store error to surface")
	}
}
