// Package crm is a thin client for the ActiveCampaign-style contact API.
// The dashboard only needs one number from it: how many contacts carry the
// campaign tag.
package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"leads_dashboard_backend/platform/config"
	"leads_dashboard_backend/platform/logger"

	"golang.org/x/time/rate"
)

// Client talks to the CRM contact API.
type Client struct {
	baseURL    string
	apiKey     string
	tagID      int
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *logger.Logger
}

// NewClient builds the CRM client. The API allows 5 requests per second
// per account; the limiter keeps bursts under that.
func NewClient(cfg config.CRMConfig, log *logger.Logger) *Client {
	return &Client{
		baseURL:    cfg.GetCRMAPIURL(),
		apiKey:     cfg.GetCRMAPIKey(),
		tagID:      cfg.GetCRMTagID(),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(5), 5),
		log:        log,
	}
}

// flexibleInt accepts both JSON numbers and numeric strings; the CRM API
// serializes totals as strings.
type flexibleInt int

func (f *flexibleInt) UnmarshalJSON(data []byte) error {
	trimmed := strings.Trim(string(data), `"`)
	if trimmed == "" || trimmed == "null" {
		*f = 0
		return nil
	}
	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return fmt.Errorf("parse total %q: %w", trimmed, err)
	}
	*f = flexibleInt(value)
	return nil
}

type contactsResponse struct {
	Meta struct {
		Total flexibleInt `json:"total"`
	} `json:"meta"`
}

// TotalContactsByTag returns how many contacts carry the given tag. The
// contact list itself is not needed, so the page size is pinned to 1 and
// only the total from the response metadata is read.
func (c *Client) TotalContactsByTag(ctx context.Context, tagID int) (int, error) {
	if c.baseURL == "" || c.apiKey == "" {
		return 0, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	url := fmt.Sprintf("%s/api/3/contacts?tagid=%d&limit=1", c.baseURL, tagID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Api-Token", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("crm contacts request returned status %d", resp.StatusCode)
	}

	var payload contactsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode crm contacts response: %w", err)
	}

	return int(payload.Meta.Total), nil
}

// Count implements the metrics CountSource using the configured campaign tag.
func (c *Client) Count(ctx context.Context) (int, error) {
	return c.TotalContactsByTag(ctx, c.tagID)
}
