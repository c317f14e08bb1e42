// Package backendtest provides an in-memory backend.Client for tests.
// It honors the same wire vocabulary as the real backend (underscore
// statuses) and supports per-operation failure injection.
package backendtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/colonyops/boardsync/internal/backend"
	"github.com/colonyops/boardsync/internal/core/action"
)

// Fake is an in-memory implementation of backend.Client.
type Fake struct {
	mu       sync.Mutex
	items    map[string]action.Raw
	order    []string
	failures map[string]error
	calls    []string
}

var _ backend.Client = (*Fake)(nil)

// New creates an empty fake backend.
func New() *Fake {
	return &Fake{
		items:    map[string]action.Raw{},
		failures: map[string]error{},
	}
}

// Seed inserts raw items directly, assigning ids to any without one.
func (f *Fake) Seed(raws ...action.Raw) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, raw := range raws {
		if raw.ID == "" {
			raw.ID = uuid.NewString()
		}
		f.items[raw.ID] = raw
		f.order = append(f.order, raw.ID)
	}
}

// Fail makes the named operation return err on every subsequent call until
// cleared with Fail(op, nil). The op key is the method name, optionally
// suffixed with "/<first-arg>" to target a single id or project, e.g.
// "LinkItemToProject/4".
func (f *Fake) Fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, op)
		return
	}
	f.failures[op] = err
}

// Calls returns the recorded operation log.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// Item returns the stored raw record for an id.
func (f *Fake) Item(id string) (action.Raw, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.items[id]
	return raw, ok
}

// Len returns the number of stored items.
func (f *Fake) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

func (f *Fake) ListGlobalItems(ctx context.Context) ([]action.Raw, error) {
	return f.list("ListGlobalItems", "", func(action.Raw) bool { return true })
}

func (f *Fake) ListProjectItems(ctx context.Context, projectID string, opts backend.ListOptions) ([]action.Raw, error) {
	return f.list("ListProjectItems", projectID, func(raw action.Raw) bool {
		if !contains(raw.ProjectIDs, projectID) {
			return false
		}
		return opts.Owner == "" || raw.Owner == opts.Owner
	})
}

func (f *Fake) ListAllItems(ctx context.Context) ([]action.Raw, error) {
	return f.list("ListAllItems", "", func(action.Raw) bool { return true })
}

func (f *Fake) CreateGlobalItem(ctx context.Context, payload backend.ItemPayload) (action.Raw, error) {
	return f.create("CreateGlobalItem", "", payload, nil, "")
}

func (f *Fake) CreateProjectItem(ctx context.Context, projectID string, payload backend.ItemPayload) (action.Raw, error) {
	return f.create("CreateProjectItem", projectID, payload, []string{projectID}, "")
}

func (f *Fake) CreateMeetingItem(ctx context.Context, transcriptionID string, payload backend.ItemPayload) (action.Raw, error) {
	return f.create("CreateMeetingItem", transcriptionID, payload, nil, "meeting "+transcriptionID)
}

func (f *Fake) UpdateItem(ctx context.Context, id string, payload backend.ItemPayload) (action.Raw, error) {
	return f.update("UpdateItem", id, payload)
}

func (f *Fake) UpdateGlobalItem(ctx context.Context, id string, payload backend.ItemPayload) (action.Raw, error) {
	return f.update("UpdateGlobalItem", id, payload)
}

func (f *Fake) DeleteItem(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("DeleteItem", id)
	if err := f.failureFor("DeleteItem", id); err != nil {
		return err
	}
	if _, ok := f.items[id]; !ok {
		return backend.ErrNotFound
	}

	delete(f.items, id)
	for i, oid := range f.order {
		if oid == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *Fake) LinkItemToProject(ctx context.Context, projectID, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("LinkItemToProject", projectID, itemID)
	if err := f.failureFor("LinkItemToProject", projectID); err != nil {
		return err
	}

	raw, ok := f.items[itemID]
	if !ok {
		return backend.ErrNotFound
	}
	if !contains(raw.ProjectIDs, projectID) {
		raw.ProjectIDs = append(raw.ProjectIDs, projectID)
		f.items[itemID] = raw
	}
	return nil
}

func (f *Fake) UnlinkItemFromProject(ctx context.Context, projectID, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("UnlinkItemFromProject", projectID, itemID)
	if err := f.failureFor("UnlinkItemFromProject", projectID); err != nil {
		return err
	}

	raw, ok := f.items[itemID]
	if !ok {
		return backend.ErrNotFound
	}
	for i, pid := range raw.ProjectIDs {
		if pid == projectID {
			raw.ProjectIDs = append(raw.ProjectIDs[:i], raw.ProjectIDs[i+1:]...)
			f.items[itemID] = raw
			break
		}
	}
	return nil
}

func (f *Fake) list(op, arg string, pred func(action.Raw) bool) ([]action.Raw, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record(op, arg)
	if err := f.failureFor(op, arg); err != nil {
		return nil, err
	}

	var out []action.Raw
	for _, id := range f.order {
		if raw, ok := f.items[id]; ok && pred(raw) {
			out = append(out, cloneRaw(raw))
		}
	}
	return out, nil
}

func (f *Fake) create(op, arg string, payload backend.ItemPayload, projectIDs []string, meetingTitle string) (action.Raw, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record(op, arg)
	if err := f.failureFor(op, arg); err != nil {
		return action.Raw{}, err
	}

	now := time.Now().UTC()
	raw := action.Raw{
		ID:           uuid.NewString(),
		Task:         payload.Task,
		Owner:        payload.Owner,
		Status:       payload.Status,
		Priority:     payload.Priority,
		DueDate:      payload.DueDate,
		MeetingTitle: meetingTitle,
		ProjectIDs:   projectIDs,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if raw.Status == "" {
		raw.Status = "pending"
	}

	f.items[raw.ID] = raw
	f.order = append(f.order, raw.ID)
	return cloneRaw(raw), nil
}

func (f *Fake) update(op, id string, payload backend.ItemPayload) (action.Raw, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record(op, id)
	if err := f.failureFor(op, id); err != nil {
		return action.Raw{}, err
	}

	raw, ok := f.items[id]
	if !ok {
		return action.Raw{}, backend.ErrNotFound
	}

	if payload.Task != "" {
		raw.Task = payload.Task
	}
	if payload.Owner != "" {
		raw.Owner = payload.Owner
	}
	if payload.Status != "" {
		raw.Status = payload.Status
	}
	if payload.Priority != "" {
		raw.Priority = payload.Priority
	}
	if payload.DueDate != nil {
		raw.DueDate = payload.DueDate
	}
	raw.UpdatedAt = time.Now().UTC()

	f.items[id] = raw
	return cloneRaw(raw), nil
}

// record and failureFor require f.mu to be held.
func (f *Fake) record(op string, args ...string) {
	call := op
	for _, a := range args {
		if a != "" {
			call += "/" + a
		}
	}
	f.calls = append(f.calls, call)
}

func (f *Fake) failureFor(op, arg string) error {
	if arg != "" {
		if err, ok := f.failures[fmt.Sprintf("%s/%s", op, arg)]; ok {
			return err
		}
	}
	return f.failures[op]
}

func cloneRaw(raw action.Raw) action.Raw {
	if raw.ProjectIDs != nil {
		ids := make([]string, len(raw.ProjectIDs))
		copy(ids, raw.ProjectIDs)
		raw.ProjectIDs = ids
	}
	return raw
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
