package groups

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"leads_dashboard_backend/platform/logger"
)

type testGroupsConfig struct {
	url        string
	token      string
	campaignID string
	manual     int
}

func (c *testGroupsConfig) GetGroupsAPIURL() string          { return c.url }
func (c *testGroupsConfig) GetGroupsAPIToken() string        { return c.token }
func (c *testGroupsConfig) GetGroupsCampaignID() string      { return c.campaignID }
func (c *testGroupsConfig) GetGroupsManualParticipants() int { return c.manual }
func (c *testGroupsConfig) IsGroupsEnabled() bool            { return c.token != "" }

func TestCountFromAnalytics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer tok")
		}
		if r.URL.Path != "/releases/rel-1/analytics" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"add":{"total":120},"remove":{"total":20}}`))
	}))
	defer server.Close()

	client := NewClient(&testGroupsConfig{url: server.URL, token: "tok", campaignID: "rel-1"}, logger.New("development"))

	got, err := client.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if got != 100 {
		t.Errorf("Count() = %d, want 100 (joins minus leaves)", got)
	}
}

func TestParticipantsNeverNegative(t *testing.T) {
	analytics := Analytics{}
	analytics.Add.Total = 5
	analytics.Remove.Total = 9

	if got := analytics.Participants(); got != 0 {
		t.Errorf("Participants() = %d, want 0", got)
	}
}

func TestCountManualFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(&testGroupsConfig{url: server.URL, token: "tok", campaignID: "rel-1", manual: 42}, logger.New("development"))

	got, err := client.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if got != 42 {
		t.Errorf("Count() = %d, want manual fallback 42", got)
	}
}

func TestCountUnconfiguredUsesManual(t *testing.T) {
	client := NewClient(&testGroupsConfig{manual: 7}, logger.New("development"))

	got, err := client.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if got != 7 {
		t.Errorf("Count() = %d, want 7", got)
	}
}
