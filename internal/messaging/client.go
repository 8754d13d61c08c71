// Package messaging is a client for the WhatsApp messaging automation API:
// contact lookup, message history, direct sends and automation triggers.
package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"leads_dashboard_backend/platform/config"
	"leads_dashboard_backend/platform/logger"
	"leads_dashboard_backend/platform/textnorm"
)

// diagnosticRequestMarker is the quiz CTA message leads send to ask for
// their diagnostic. Compared diacritic-folded.
const diagnosticRequestMarker = "QUERO MEU DIAGNOSTICO"

// Client talks to the messaging API.
type Client struct {
	baseURL       string
	token         string
	automationURL string
	httpClient    *http.Client
	log           *logger.Logger
}

// NewClient builds the messaging client.
func NewClient(cfg config.MessagingConfig, log *logger.Logger) *Client {
	return &Client{
		baseURL:       cfg.GetMessagingAPIURL(),
		token:         cfg.GetMessagingAPIToken(),
		automationURL: cfg.GetMessagingAutomationURL(),
		httpClient:    &http.Client{Timeout: 15 * time.Second},
		log:           log,
	}
}

// Enabled reports whether the API credentials are configured.
func (c *Client) Enabled() bool {
	return c.token != ""
}

// Contact is one messaging-platform contact.
type Contact struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Message is one entry of a contact's message history.
type Message struct {
	Text      string    `json:"text"`
	FromMe    bool      `json:"fromMe"`
	CreatedAt time.Time `json:"createdAt"`
}

// SearchContacts finds contacts by phone number.
func (c *Client) SearchContacts(ctx context.Context, phone string) ([]Contact, error) {
	var payload struct {
		Contacts []Contact `json:"contacts"`
	}
	err := c.do(ctx, http.MethodPost, c.baseURL+"/contact/search",
		map[string]string{"phone": phone}, &payload)
	if err != nil {
		return nil, err
	}
	return payload.Contacts, nil
}

// ContactMessages returns the message history of one contact.
func (c *Client) ContactMessages(ctx context.Context, contactID string) ([]Message, error) {
	var payload struct {
		Messages []Message `json:"messages"`
	}
	err := c.do(ctx, http.MethodGet,
		fmt.Sprintf("%s/contact/%s/messages", c.baseURL, contactID), nil, &payload)
	if err != nil {
		return nil, err
	}
	return payload.Messages, nil
}

// SendMessage delivers a plain text message to a phone number.
func (c *Client) SendMessage(ctx context.Context, phone, message string) error {
	return c.do(ctx, http.MethodPost, c.baseURL+"/message/send",
		map[string]string{"phone": phone, "message": message}, nil)
}

// TriggerAutomation fires the configured automation flow for one contact.
// The automation endpoint acknowledges with a response field; anything
// else is treated as a failed trigger.
func (c *Client) TriggerAutomation(ctx context.Context, phone, email string) error {
	if c.automationURL == "" {
		return fmt.Errorf("automation URL not configured")
	}

	var payload struct {
		Data struct {
			Response string `json:"response"`
		} `json:"data"`
	}
	err := c.do(ctx, http.MethodPost, c.automationURL,
		map[string]string{"phone": phone, "email": email}, &payload)
	if err != nil {
		return err
	}
	if payload.Data.Response == "" {
		return fmt.Errorf("automation trigger not acknowledged")
	}
	return nil
}

// CountDiagnosticRequests scans the message history of up to maxContacts
// contacts and counts those that sent the diagnostic request CTA. The scan
// is bounded because the messaging API has no server-side text search.
func (c *Client) CountDiagnosticRequests(ctx context.Context, phones []string, maxContacts int) (int, error) {
	if maxContacts <= 0 || maxContacts > len(phones) {
		maxContacts = len(phones)
	}

	var count int
	for _, phone := range phones[:maxContacts] {
		contacts, err := c.SearchContacts(ctx, phone)
		if err != nil {
			return count, err
		}
		if len(contacts) == 0 {
			continue
		}

		messages, err := c.ContactMessages(ctx, contacts[0].ID)
		if err != nil {
			return count, err
		}
		for _, message := range messages {
			if message.FromMe {
				continue
			}
			if strings.Contains(textnorm.Canonical(message.Text), diagnosticRequestMarker) {
				count++
				break
			}
		}
	}

	return count, nil
}

func (c *Client) do(ctx context.Context, method, url string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("messaging request %s returned status %d", url, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode messaging response: %w", err)
	}
	return nil
}
