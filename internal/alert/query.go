package alert

import "sort"

// Matches reports whether a satisfies every field set in f.
func (f Filter) Matches(a *Alert) bool {
	if f.Severity != "" && a.Severity != f.Severity {
		return false
	}
	if f.Type != "" && a.Type != f.Type {
		return false
	}
	if f.Acknowledged != nil && a.Acknowledged != *f.Acknowledged {
		return false
	}
	if f.Resolved != nil && a.Resolved != *f.Resolved {
		return false
	}
	return true
}

// Normalize applies the defaults for missing or out-of-range values.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Offset < 0 {
		p.Offset = DefaultOffset
	}
	return p
}

// BuildList filters, sorts newest first and then paginates. The order is
// load-bearing: paging before sorting would return the wrong page. Stats
// describe the whole filtered set, not just the page.
func BuildList(alerts []Alert, f Filter, p Page) *ListResult {
	p = p.Normalize()

	filtered := make([]Alert, 0, len(alerts))
	for i := range alerts {
		if f.Matches(&alerts[i]) {
			filtered = append(filtered, alerts[i])
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Timestamp.After(filtered[j].Timestamp)
	})

	total := len(filtered)
	start := p.Offset
	if start > total {
		start = total
	}
	end := total
	if p.Limit < total-start {
		end = start + p.Limit
	}

	return &ListResult{
		Alerts: filtered[start:end],
		Stats:  ComputeStats(filtered),
		Pagination: Pagination{
			Limit:   p.Limit,
			Offset:  p.Offset,
			Total:   total,
			HasMore: p.Offset < total && p.Limit < total-p.Offset,
		},
	}
}

func ComputeStats(alerts []Alert) Stats {
	stats := Stats{Total: len(alerts)}
	for i := range alerts {
		switch alerts[i].Severity {
		case SeverityCritical:
			stats.Critical++
		case SeverityHigh:
			stats.High++
		case SeverityMedium:
			stats.Medium++
		case SeverityLow:
			stats.Low++
		}
		if !alerts[i].Acknowledged {
			stats.Unacknowledged++
		}
		if !alerts[i].Resolved {
			stats.Unresolved++
		}
	}
	return stats
}
