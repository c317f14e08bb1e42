package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/colonyops/boardsync/internal/backend"
	"github.com/colonyops/boardsync/internal/core/action"
)

// Mode is the scoping context that determines backend routing semantics.
type Mode string

const (
	// ModeGlobal operates on the global task pool.
	ModeGlobal Mode = "global"
	// ModeProject operates on the subset linked to one project.
	ModeProject Mode = "project"
	// ModeMeeting operates on a read-only meeting-derived snapshot.
	ModeMeeting Mode = "meeting"
)

var (
	// ErrReadOnly is returned for mutations that meeting mode does not support.
	ErrReadOnly = errors.New("meeting items are read-only in this mode")
	// ErrGlobalOnly is returned when permanent delete is requested outside
	// the global board.
	ErrGlobalOnly = errors.New("permanent delete is only available on the global board")
)

// router translates logical operations into backend calls for one mode.
// The status vocabulary is translated here and nowhere else: payloads carry
// the underscore wire form, responses are normalized by the caller.
type router struct {
	client          backend.Client
	mode            Mode
	projectID       string
	transcriptionID string
	snapshot        []action.Raw
}

// list retrieves the raw collection for the mode. Meeting mode serves the
// externally supplied snapshot without a network call. The owner argument
// narrows project listings server-side; other modes ignore it.
func (r router) list(ctx context.Context, owner string) ([]action.Raw, error) {
	switch r.mode {
	case ModeProject:
		return r.client.ListProjectItems(ctx, r.projectID, backend.ListOptions{Owner: owner})
	case ModeMeeting:
		out := make([]action.Raw, len(r.snapshot))
		copy(out, r.snapshot)
		return out, nil
	default:
		return r.client.ListGlobalItems(ctx)
	}
}

// create routes item creation. Project mode creates under the project and
// then links, per the backend contract; a created-but-unlinked item is
// reported with both the raw record and the link error.
func (r router) create(ctx context.Context, payload backend.ItemPayload) (action.Raw, error) {
	switch r.mode {
	case ModeProject:
		raw, err := r.client.CreateProjectItem(ctx, r.projectID, payload)
		if err != nil {
			return action.Raw{}, err
		}
		if err := r.client.LinkItemToProject(ctx, r.projectID, raw.ID); err != nil {
			return raw, fmt.Errorf("link created item to project %s: %w", r.projectID, err)
		}
		return raw, nil
	case ModeMeeting:
		return r.client.CreateMeetingItem(ctx, r.transcriptionID, payload)
	default:
		return r.client.CreateGlobalItem(ctx, payload)
	}
}

// update routes item updates. Global mode uses the dedicated global
// endpoint; project and meeting modes share the common one.
func (r router) update(ctx context.Context, id string, payload backend.ItemPayload) (action.Raw, error) {
	if r.mode == ModeGlobal {
		return r.client.UpdateGlobalItem(ctx, id, payload)
	}
	return r.client.UpdateItem(ctx, id, payload)
}

// delete routes item removal. Project mode must never hard-delete: the item
// may be linked elsewhere, so only the project association is removed.
// Meeting mode does not support deletion at all.
func (r router) delete(ctx context.Context, id string) error {
	switch r.mode {
	case ModeProject:
		return r.client.UnlinkItemFromProject(ctx, r.projectID, id)
	case ModeMeeting:
		return ErrReadOnly
	default:
		return r.client.DeleteItem(ctx, id)
	}
}

// linkTargets filters bulk-link project ids: the current project is excluded
// in project mode since creation already links it.
func (r router) linkTargets(projectIDs []string) []string {
	if r.mode != ModeProject {
		return projectIDs
	}
	out := make([]string, 0, len(projectIDs))
	for _, pid := range projectIDs {
		if pid != r.projectID {
			out = append(out, pid)
		}
	}
	return out
}
