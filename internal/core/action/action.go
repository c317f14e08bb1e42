// Package action defines the action item domain model shared by the sync
// engine, the backend client, and the CLI.
package action

import (
	"strings"
	"time"
)

// Status represents the lifecycle state of an action item.
//
// The canonical in-memory form is hyphenated. Backends that speak the
// underscore form are translated at the wire boundary via ParseStatus and
// Status.Wire; stored items never carry underscores.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// ParseStatus canonicalizes a raw status string into the hyphenated form.
// An empty input defaults to StatusPending. Unknown values are kept as-is
// (hyphenated) so they are never silently dropped; grouping places them in
// the pending bucket.
func ParseStatus(s string) Status {
	s = strings.TrimSpace(s)
	if s == "" {
		return StatusPending
	}
	return Status(strings.ReplaceAll(s, "_", "-"))
}

// Wire returns the underscore encoding used by the shared update endpoint.
func (s Status) Wire() string {
	return strings.ReplaceAll(string(s), "-", "_")
}

// Priority represents the urgency of an action item.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
	PriorityNone   Priority = "none"
)

// ParsePriority canonicalizes a raw priority string, defaulting to
// PriorityNone when absent or unknown.
func ParsePriority(s string) Priority {
	switch Priority(strings.TrimSpace(strings.ToLower(s))) {
	case PriorityHigh:
		return PriorityHigh
	case PriorityMedium:
		return PriorityMedium
	case PriorityLow:
		return PriorityLow
	default:
		return PriorityNone
	}
}

// Item is a single action item as held in the authoritative collection.
type Item struct {
	ID           string     `json:"id"`
	Task         string     `json:"task"`
	Owner        string     `json:"owner,omitempty"`
	Status       Status     `json:"status"`
	Priority     Priority   `json:"priority"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	MeetingTitle string     `json:"meeting_title,omitempty"`
	ProjectIDs   []string   `json:"project_ids,omitempty"`
	CreatedAt    time.Time  `json:"created_at,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at,omitempty"`
}

// LinkedTo reports whether the item is associated with the given project.
func (i Item) LinkedTo(projectID string) bool {
	for _, id := range i.ProjectIDs {
		if id == projectID {
			return true
		}
	}
	return false
}

// Raw is the heterogeneous record shape returned by backends. Display text
// may arrive under task, description, or title depending on the source.
type Raw struct {
	ID           string     `json:"id"`
	Task         string     `json:"task,omitempty"`
	Description  string     `json:"description,omitempty"`
	Title        string     `json:"title,omitempty"`
	Owner        string     `json:"owner,omitempty"`
	Status       string     `json:"status,omitempty"`
	Priority     string     `json:"priority,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	MeetingTitle string     `json:"meeting_title,omitempty"`
	ProjectIDs   []string   `json:"linked_project_ids,omitempty"`
	CreatedAt    time.Time  `json:"created_at,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at,omitempty"`
}

// Normalize coerces a raw record into the canonical Item shape. It is total:
// missing fields degrade to defaults rather than failing. Task falls through
// the task/description/title alias chain; if all are empty the item is kept
// with an empty label.
func Normalize(raw Raw) Item {
	task := raw.Task
	if task == "" {
		task = raw.Description
	}
	if task == "" {
		task = raw.Title
	}

	return Item{
		ID:           raw.ID,
		Task:         task,
		Owner:        raw.Owner,
		Status:       ParseStatus(raw.Status),
		Priority:     ParsePriority(raw.Priority),
		DueDate:      raw.DueDate,
		MeetingTitle: raw.MeetingTitle,
		ProjectIDs:   raw.ProjectIDs,
		CreatedAt:    raw.CreatedAt,
		UpdatedAt:    raw.UpdatedAt,
	}
}

// NormalizeAll maps Normalize over a slice, preserving order.
func NormalizeAll(raws []Raw) []Item {
	items := make([]Item, len(raws))
	for i, raw := range raws {
		items[i] = Normalize(raw)
	}
	return items
}
