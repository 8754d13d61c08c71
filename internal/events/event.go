// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"leads_dashboard_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Leads Domain Events
// =============================================================================

// StudentFlagged is published when a webhook marks a lead as an enrolled student.
type StudentFlagged struct {
	BaseEvent
	LeadID       uuid.UUID `json:"leadId"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	ListName     string    `json:"listName"`
	LegacyCohort bool      `json:"legacyCohort"`
}

func (e StudentFlagged) EventName() string { return "leads.student.flagged" }

// DiagnosticSent is published when a diagnostic message is delivered to a lead.
type DiagnosticSent struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	Phone  string    `json:"phone"`
	Kind   string    `json:"kind"` // "diagnostic", "challenge", "custom"
}

func (e DiagnosticSent) EventName() string { return "leads.diagnostic.sent" }

// AudioDispatched is published when a personalized audio is generated and the
// delivery automation has been triggered.
type AudioDispatched struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	Phone     string    `json:"phone"`
	Element   string    `json:"element"`
	AudioURL  string    `json:"audioUrl"`
	Simulated bool      `json:"simulated"`
}

func (e AudioDispatched) EventName() string { return "leads.audio.dispatched" }
