package metrics

import (
	"time"

	"leads_dashboard_backend/internal/leads/repository"
)

const defaultTimeSeriesDays = 30

// DayCount is one bucket of the lead-creation time series.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// buildTimeSeries buckets lead creation into the trailing calendar days
// including today, oldest first and zero-filled. Both the reference days
// and the bucketing truncate in the same fixed timezone; mixing zones here
// shifts counts across midnight at the window edges.
func buildTimeSeries(leads []repository.Lead, days int, now time.Time, loc *time.Location) []DayCount {
	if days <= 0 {
		days = defaultTimeSeriesDays
	}

	today := dayKey(now, loc)

	series := make([]DayCount, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		day := today.AddDate(0, 0, i-days+1)
		key := day.Format("2006-01-02")
		series[i] = DayCount{Date: key}
		index[key] = i
	}

	for _, lead := range leads {
		key := dayKey(lead.CreatedAt, loc).Format("2006-01-02")
		if i, ok := index[key]; ok {
			series[i].Count++
		}
	}

	return series
}

// dayKey truncates a timestamp to its calendar date in the reference zone.
func dayKey(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
