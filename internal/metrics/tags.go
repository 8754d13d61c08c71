package metrics

import (
	"sort"

	"leads_dashboard_backend/internal/leads/repository"
	"leads_dashboard_backend/platform/textnorm"
)

// excludedTag is the broadcast-template marker written by the bulk sender.
// It would dominate the distribution without describing lead state.
const excludedTag = "TEMPLATE_ENVIADO"

// TagCount is one entry of the status-tag distribution.
type TagCount struct {
	Tag        string `json:"tag"`
	Count      int    `json:"count"`
	Percentual string `json:"percentual"`
}

// recordTags extracts the deduplicated canonical tag set of one lead,
// falling back to the single whatsapp_status when no tags are present.
func recordTags(lead repository.Lead) []string {
	if lead.StatusTags != nil {
		if tags := textnorm.SplitTags(*lead.StatusTags); len(tags) > 0 {
			return tags
		}
	}
	if lead.WhatsAppStatus != nil {
		if tag := textnorm.Canonical(*lead.WhatsAppStatus); tag != "" {
			return []string{tag}
		}
	}
	return nil
}

// buildTagDistribution aggregates canonical tags across all leads.
// Percentages are taken against the full record count. Sorted by count
// descending, ties broken by tag ascending for stable output.
func buildTagDistribution(leads []repository.Lead) []TagCount {
	counts := make(map[string]int)
	for _, lead := range leads {
		for _, tag := range recordTags(lead) {
			if tag == excludedTag {
				continue
			}
			counts[tag]++
		}
	}

	distribution := make([]TagCount, 0, len(counts))
	for tag, count := range counts {
		distribution = append(distribution, TagCount{
			Tag:        tag,
			Count:      count,
			Percentual: formatRate(count, len(leads)),
		})
	}

	sort.Slice(distribution, func(i, j int) bool {
		if distribution[i].Count != distribution[j].Count {
			return distribution[i].Count > distribution[j].Count
		}
		return distribution[i].Tag < distribution[j].Tag
	})

	return distribution
}
