package metrics

import (
	"testing"

	"leads_dashboard_backend/internal/leads/repository"
)

func TestBuildTagDistribution(t *testing.T) {
	leads := []repository.Lead{
		{StatusTags: strPtr("SENT,sent, Sent")},
		{StatusTags: strPtr("sent; pendente")},
		{StatusTags: strPtr("não respondido")},
		{WhatsAppStatus: strPtr("nao respondido")},
		{StatusTags: strPtr("TEMPLATE_ENVIADO")},
		{},
	}

	distribution := buildTagDistribution(leads)

	counts := make(map[string]int, len(distribution))
	for _, entry := range distribution {
		counts[entry.Tag] = entry.Count
	}

	if counts["SENT"] != 2 {
		t.Errorf("SENT count = %d, want 2 (per-record dedup)", counts["SENT"])
	}
	if counts["NAO RESPONDIDO"] != 2 {
		t.Errorf("NAO RESPONDIDO count = %d, want 2 (diacritic fold + status fallback)", counts["NAO RESPONDIDO"])
	}
	if counts["PENDENTE"] != 1 {
		t.Errorf("PENDENTE count = %d, want 1", counts["PENDENTE"])
	}
	if _, present := counts["TEMPLATE_ENVIADO"]; present {
		t.Error("TEMPLATE_ENVIADO must be excluded from the distribution")
	}

	// Sorted by count descending, ties by tag ascending.
	for i := 1; i < len(distribution); i++ {
		prev, curr := distribution[i-1], distribution[i]
		if prev.Count < curr.Count {
			t.Errorf("distribution not sorted by count: %v before %v", prev, curr)
		}
		if prev.Count == curr.Count && prev.Tag > curr.Tag {
			t.Errorf("tie not sorted by tag: %q before %q", prev.Tag, curr.Tag)
		}
	}
}

func TestRecordTagsFallback(t *testing.T) {
	tests := []struct {
		name string
		lead repository.Lead
		want int
	}{
		{"tags take precedence", repository.Lead{StatusTags: strPtr("a,b"), WhatsAppStatus: strPtr("c")}, 2},
		{"fallback to status", repository.Lead{WhatsAppStatus: strPtr("sent")}, 1},
		{"empty tags fall back", repository.Lead{StatusTags: strPtr("  "), WhatsAppStatus: strPtr("sent")}, 1},
		{"nothing set", repository.Lead{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := recordTags(tt.lead); len(got) != tt.want {
				t.Errorf("recordTags() = %v, want %d tags", got, tt.want)
			}
		})
	}
}
