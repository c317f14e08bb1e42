package action

import (
	"strings"
	"time"
)

// TimeHorizon is a relative future-date cutoff for the filter pipeline.
type TimeHorizon string

const (
	HorizonAll       TimeHorizon = "all"
	HorizonWeek      TimeHorizon = "1week"
	HorizonTwoWeeks  TimeHorizon = "2weeks"
	HorizonMonth     TimeHorizon = "1month"
	HorizonQuarter   TimeHorizon = "3months"
	HorizonHalfYear  TimeHorizon = "6months"
	HorizonYear      TimeHorizon = "1year"
)

// Limit returns the cutoff date for the horizon relative to now, and whether
// a cutoff applies at all. HorizonAll (and unknown codes) apply no cutoff.
func (h TimeHorizon) Limit(now time.Time) (time.Time, bool) {
	switch h {
	case HorizonWeek:
		return now.AddDate(0, 0, 7), true
	case HorizonTwoWeeks:
		return now.AddDate(0, 0, 14), true
	case HorizonMonth:
		return now.AddDate(0, 1, 0), true
	case HorizonQuarter:
		return now.AddDate(0, 3, 0), true
	case HorizonHalfYear:
		return now.AddDate(0, 6, 0), true
	case HorizonYear:
		return now.AddDate(1, 0, 0), true
	default:
		return time.Time{}, false
	}
}

// Criteria is the value object controlling the filter pipeline. Filters are
// purely derivational; no field ever mutates item data.
type Criteria struct {
	FilterUserName  string
	ShowOnlyMyTasks bool
	TimeHorizon     TimeHorizon
	ShowCompleted   bool
	SearchQuery     string
}

// DefaultCriteria returns criteria that pass every item through.
func DefaultCriteria() Criteria {
	return Criteria{
		TimeHorizon:   HorizonAll,
		ShowCompleted: true,
	}
}

// Apply runs the filter pipeline over items in its fixed stage order:
// time horizon, owner, completed visibility, search. Each stage narrows the
// previous result; relative input order is preserved and no sort is applied.
func (c Criteria) Apply(items []Item, now time.Time) []Item {
	out := items

	if limit, ok := c.TimeHorizon.Limit(now); ok {
		out = keep(out, func(it Item) bool {
			if it.DueDate == nil {
				return true
			}
			due := *it.DueDate
			// Overdue-incomplete items are always surfaced regardless of horizon.
			if due.Before(now) && it.Status != StatusCompleted {
				return true
			}
			return !due.Before(now) && !due.After(limit)
		})
	}

	if name := strings.TrimSpace(c.FilterUserName); c.ShowOnlyMyTasks && name != "" {
		out = keep(out, func(it Item) bool {
			owner := strings.TrimSpace(it.Owner)
			return owner != "" && strings.EqualFold(owner, name)
		})
	}

	if !c.ShowCompleted {
		out = keep(out, func(it Item) bool {
			return it.Status != StatusCompleted
		})
	}

	if query := strings.TrimSpace(c.SearchQuery); query != "" {
		q := strings.ToLower(query)
		out = keep(out, func(it Item) bool {
			return containsFold(it.Task, q) ||
				containsFold(it.Owner, q) ||
				containsFold(it.MeetingTitle, q)
		})
	}

	return out
}

func keep(items []Item, pred func(Item) bool) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if pred(it) {
			out = append(out, it)
		}
	}
	return out
}

func containsFold(s, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(s), lowerQuery)
}
