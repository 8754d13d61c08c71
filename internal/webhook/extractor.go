// Package webhook receives CRM notifications that flag leads as enrolled
// students. The CRM delivers the same event as JSON or form-urlencoded
// depending on the webhook configuration, so extraction handles both.
package webhook

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Contact is the contact block of a CRM webhook payload.
type Contact struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// List is the list block of a CRM webhook payload.
type List struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	StringID string `json:"stringid"`
}

// Payload is the normalized webhook event.
type Payload struct {
	Type    string  `json:"type"`
	Contact Contact `json:"contact"`
	List    List    `json:"list"`
}

// HasContact reports whether the payload carries anything to match a
// lead by.
func (p Payload) HasContact() bool {
	return p.Contact.Email != "" || p.Contact.Phone != ""
}

// Extract parses a raw webhook body. The CRM sends form-urlencoded by
// default with bracketed keys like contact[email]; JSON is also accepted.
// Unknown content types are tried as JSON first, then as a form.
func Extract(contentType string, body []byte) (Payload, error) {
	switch {
	case strings.Contains(contentType, "application/json"):
		return extractJSON(body)
	case strings.Contains(contentType, "application/x-www-form-urlencoded"):
		return extractForm(body)
	default:
		payload, err := extractJSON(body)
		if err == nil {
			return payload, nil
		}
		return extractForm(body)
	}
}

func extractJSON(body []byte) (Payload, error) {
	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return Payload{}, fmt.Errorf("parse webhook JSON: %w", err)
	}
	return payload, nil
}

func extractForm(body []byte) (Payload, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return Payload{}, fmt.Errorf("parse webhook form: %w", err)
	}

	payload := Payload{
		Type: values.Get("type"),
		Contact: Contact{
			ID:        values.Get("contact[id]"),
			Email:     values.Get("contact[email]"),
			Phone:     values.Get("contact[phone]"),
			FirstName: values.Get("contact[first_name]"),
			LastName:  values.Get("contact[last_name]"),
		},
		List: List{
			ID:       values.Get("list[id]"),
			Name:     values.Get("list[name]"),
			StringID: values.Get("list[stringid]"),
		},
	}
	if payload.Type == "" {
		payload.Type = values.Get("contact[type]")
	}
	if payload.List.ID == "" {
		payload.List.ID = values.Get("list")
	}
	return payload, nil
}
