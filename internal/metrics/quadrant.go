package metrics

import (
	"strconv"
	"strings"

	"leads_dashboard_backend/internal/leads/repository"
	"leads_dashboard_backend/platform/textnorm"
)

// urgencyScaleThreshold is the cut point on the 1-5 calculated scale.
const urgencyScaleThreshold = 4

// QuadrantCount is one cell of the urgency x intensity breakdown.
type QuadrantCount struct {
	Quadrante  int    `json:"quadrante"`
	Count      int    `json:"count"`
	Percentual string `json:"percentual"`
}

// classifyQuadrant maps a lead to quadrant 1-4. Rules are evaluated in
// order, first match wins, and every lead lands in exactly one quadrant:
//  1. a stored quadrante that parses to 1-4 is authoritative;
//  2. calculated intensity and urgency on the 1-5 scale, threshold 4;
//  3. priority label and lead score as coarse urgency/intensity proxies.
//
// Malformed numeric fields are treated as absent and fall through.
func classifyQuadrant(lead repository.Lead, intensityThreshold float64) int {
	if q, ok := parseQuadrant(lead.Quadrante); ok {
		return q
	}

	intensity, okI := parseNumeric(lead.IntensidadeCalculada)
	urgency, okU := parseNumeric(lead.UrgenciaCalculada)
	if okI && okU {
		switch {
		case intensity >= urgencyScaleThreshold && urgency >= urgencyScaleThreshold:
			return 1
		case intensity >= urgencyScaleThreshold:
			return 2
		case urgency >= urgencyScaleThreshold:
			return 3
		default:
			return 4
		}
	}

	highUrgency := lead.Prioridade != nil && textnorm.Canonical(*lead.Prioridade) == "ALTA"
	highIntensity := lead.LeadScore != nil && float64(*lead.LeadScore) >= intensityThreshold
	switch {
	case highUrgency && highIntensity:
		return 1
	case highUrgency:
		return 2
	case highIntensity:
		return 3
	default:
		return 4
	}
}

// buildQuadrantDistribution tallies quadrants over the full lead set.
func buildQuadrantDistribution(leads []repository.Lead, intensityThreshold float64) []QuadrantCount {
	var counts [4]int
	for _, lead := range leads {
		counts[classifyQuadrant(lead, intensityThreshold)-1]++
	}

	distribution := make([]QuadrantCount, 4)
	for i, count := range counts {
		distribution[i] = QuadrantCount{
			Quadrante:  i + 1,
			Count:      count,
			Percentual: formatRate(count, len(leads)),
		}
	}
	return distribution
}

// parseQuadrant accepts stored quadrants as integers or numeric strings
// and validates the 1-4 range.
func parseQuadrant(raw *string) (int, bool) {
	value, ok := parseNumeric(raw)
	if !ok {
		return 0, false
	}
	q := int(value)
	if float64(q) != value || q < 1 || q > 4 {
		return 0, false
	}
	return q, true
}

func parseNumeric(raw *string) (float64, bool) {
	if raw == nil {
		return 0, false
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
