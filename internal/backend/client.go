// Package backend defines the task backend contract and its HTTP
// implementation. Wire payloads speak the backend's underscore status
// vocabulary; callers translate to the canonical hyphenated form via the
// action package at this boundary.
package backend

import (
	"context"
	"errors"
	"time"

	"github.com/colonyops/boardsync/internal/core/action"
)

var (
	// ErrNotFound is returned when the backend has no item with the given id.
	ErrNotFound = errors.New("action item not found")
)

// ItemPayload is the request body for create and update calls. Zero fields
// are omitted so partial updates touch only the provided values. Status uses
// the underscore wire form (see action.Status.Wire).
type ItemPayload struct {
	Task     string     `json:"task,omitempty"`
	Owner    string     `json:"owner,omitempty"`
	Status   string     `json:"status,omitempty"`
	Priority string     `json:"priority,omitempty"`
	DueDate  *time.Time `json:"due_date,omitempty"`
}

// ListOptions narrows list calls server-side.
type ListOptions struct {
	// Owner filters project listings to a single assignee. Empty means all.
	Owner string
}

// Client is the backend contract the sync engine routes through.
type Client interface {
	// ListGlobalItems returns every item in the global pool.
	ListGlobalItems(ctx context.Context) ([]action.Raw, error)

	// ListProjectItems returns items linked to a project.
	ListProjectItems(ctx context.Context, projectID string, opts ListOptions) ([]action.Raw, error)

	// ListAllItems returns the full collection regardless of linkage.
	// Used for available-to-link computation.
	ListAllItems(ctx context.Context) ([]action.Raw, error)

	// CreateGlobalItem creates an unscoped item.
	CreateGlobalItem(ctx context.Context, payload ItemPayload) (action.Raw, error)

	// CreateProjectItem creates an item under a project.
	CreateProjectItem(ctx context.Context, projectID string, payload ItemPayload) (action.Raw, error)

	// CreateMeetingItem creates an item under a meeting transcription.
	CreateMeetingItem(ctx context.Context, transcriptionID string, payload ItemPayload) (action.Raw, error)

	// UpdateItem updates an item through the shared endpoint.
	UpdateItem(ctx context.Context, id string, payload ItemPayload) (action.Raw, error)

	// UpdateGlobalItem updates an item through the global endpoint.
	UpdateGlobalItem(ctx context.Context, id string, payload ItemPayload) (action.Raw, error)

	// DeleteItem permanently deletes an item.
	DeleteItem(ctx context.Context, id string) error

	// LinkItemToProject associates an item with a project.
	LinkItemToProject(ctx context.Context, projectID, itemID string) error

	// UnlinkItemFromProject removes a project association. The item itself
	// persists and may remain linked elsewhere.
	UnlinkItemFromProject(ctx context.Context, projectID, itemID string) error
}
