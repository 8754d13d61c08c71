// Package groups is a client for the group-broadcast campaign API. It
// reports how many people are currently inside the campaign's WhatsApp
// groups (joins minus leaves).
package groups

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"leads_dashboard_backend/platform/config"
	"leads_dashboard_backend/platform/logger"
)

// Client talks to the campaign analytics API.
type Client struct {
	baseURL            string
	token              string
	campaignID         string
	manualParticipants int
	httpClient         *http.Client
	log                *logger.Logger
}

// NewClient builds the groups client.
func NewClient(cfg config.GroupsConfig, log *logger.Logger) *Client {
	return &Client{
		baseURL:            cfg.GetGroupsAPIURL(),
		token:              cfg.GetGroupsAPIToken(),
		campaignID:         cfg.GetGroupsCampaignID(),
		manualParticipants: cfg.GetGroupsManualParticipants(),
		httpClient:         &http.Client{Timeout: 10 * time.Second},
		log:                log,
	}
}

// Analytics is the slice of the campaign analytics payload this system uses.
type Analytics struct {
	Add struct {
		Total int `json:"total"`
	} `json:"add"`
	Remove struct {
		Total int `json:"total"`
	} `json:"remove"`
}

// Participants is the net member count.
func (a Analytics) Participants() int {
	net := a.Add.Total - a.Remove.Total
	if net < 0 {
		return 0
	}
	return net
}

// ReleaseAnalytics fetches join/leave totals for one campaign release.
func (c *Client) ReleaseAnalytics(ctx context.Context, releaseID string) (Analytics, error) {
	url := fmt.Sprintf("%s/releases/%s/analytics", c.baseURL, releaseID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Analytics{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Analytics{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Analytics{}, fmt.Errorf("group analytics request returned status %d", resp.StatusCode)
	}

	var analytics Analytics
	if err := json.NewDecoder(resp.Body).Decode(&analytics); err != nil {
		return Analytics{}, fmt.Errorf("decode group analytics response: %w", err)
	}

	return analytics, nil
}

// Count implements the metrics CountSource. When the API is unconfigured
// or failing, the manually maintained participant count takes over; zero
// means no data.
func (c *Client) Count(ctx context.Context) (int, error) {
	if c.token == "" || c.campaignID == "" {
		return c.manualParticipants, nil
	}

	analytics, err := c.ReleaseAnalytics(ctx, c.campaignID)
	if err != nil {
		if c.manualParticipants > 0 {
			c.log.ExternalAPIError("groups", err)
			return c.manualParticipants, nil
		}
		return 0, err
	}

	return analytics.Participants(), nil
}
