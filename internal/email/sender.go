// Package email delivers the daily metrics summary to the marketing team
// over SMTP.
package email

import "context"

// DailySummaryData is everything the summary email reports.
type DailySummaryData struct {
	Date           string
	TotalLeads     int
	NewLeads       int
	NewVIPs        int
	Students       int
	AverageScore   string
	DiagnosticRate string
	GroupRate      string
	WhatsAppTotal  int
	WhatsAppRate   string
	Degraded       bool
}

// Sender delivers summary emails.
type Sender interface {
	SendDailySummaryEmail(ctx context.Context, toEmail string, data DailySummaryData) error
}

// Noop is the sender used when email is disabled. It silently drops
// everything so callers need no enabled checks.
type Noop struct{}

func (Noop) SendDailySummaryEmail(context.Context, string, DailySummaryData) error { return nil }
