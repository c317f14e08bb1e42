package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/colonyops/boardsync/internal/backend"
	"github.com/colonyops/boardsync/internal/core/action"
	"github.com/colonyops/boardsync/internal/core/eventbus"
)

// mutation is one optimistic state transition: the local change is applied
// immediately, the remote call resolves asynchronously, and on failure the
// collection is restored wholesale to the pre-mutation snapshot.
type mutation struct {
	// op names the operation for logging and failure events.
	op string
	// apply performs the optimistic local change on a private copy.
	apply func(items []action.Item) []action.Item
	// remote performs the backend call. A non-nil raw is the canonical
	// representation that supersedes the optimistic guess.
	remote func(ctx context.Context) (*action.Raw, error)
	// confirm folds the canonical value into the collection. Nil when the
	// operation has no canonical result (delete, link, unlink).
	confirm func(items []action.Item, canonical action.Item) []action.Item
	// announce publishes the success event. Called outside the lock.
	announce func(canonical *action.Item)
}

// run executes the mutation protocol: snapshot, apply, resolve. Each call
// captures its own snapshot and rolls back independently; rapid mutations on
// the same item are last-resolved-wins (accepted limitation of a
// single-session cache, see DESIGN.md).
func (e *Engine) run(ctx context.Context, m mutation) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return fmt.Errorf("engine is closed")
	}
	snapshot := cloneItems(e.items)
	e.items = m.apply(cloneItems(e.items))
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		raw, err := m.remote(ctx)

		e.mu.Lock()
		if e.closed {
			e.mu.Unlock()
			return
		}

		if err != nil {
			e.items = snapshot
			e.errMsg = fmt.Sprintf("%s failed: %v", m.op, err)
			e.mu.Unlock()

			e.log.Warn().Err(err).Str("op", m.op).Msg("mutation rolled back")
			e.bus.PublishMutationFailed(eventbus.MutationFailedPayload{Op: m.op, Err: err.Error()})
			return
		}

		var canonical *action.Item
		if raw != nil {
			item := action.Normalize(*raw)
			canonical = &item
			if m.confirm != nil {
				e.items = m.confirm(e.items, item)
			}
		}
		e.errMsg = ""
		e.mu.Unlock()

		if m.announce != nil {
			m.announce(canonical)
		}
	}()

	return nil
}

// SetStatus optimistically moves an item to the given status and confirms it
// with the backend. The caller sees the new status immediately.
func (e *Engine) SetStatus(ctx context.Context, id string, status action.Status) error {
	return e.run(ctx, mutation{
		op: "set status",
		apply: func(items []action.Item) []action.Item {
			return replaceItem(items, id, func(it action.Item) action.Item {
				it.Status = status
				return it
			})
		},
		remote: func(ctx context.Context) (*action.Raw, error) {
			raw, err := e.router.update(ctx, id, backend.ItemPayload{Status: status.Wire()})
			if err != nil {
				return nil, err
			}
			return &raw, nil
		},
		confirm: func(items []action.Item, canonical action.Item) []action.Item {
			return replaceItem(items, id, func(action.Item) action.Item { return canonical })
		},
		announce: func(canonical *action.Item) {
			e.bus.PublishItemUpdated(eventbus.ItemUpdatedPayload{Item: canonical})
		},
	})
}

// UpdateRequest carries the editable item fields. Zero fields are left
// untouched.
type UpdateRequest struct {
	Task     string
	Owner    string
	Status   action.Status
	Priority action.Priority
	DueDate  *time.Time
}

// Update optimistically edits an item and confirms it with the backend.
func (e *Engine) Update(ctx context.Context, id string, req UpdateRequest) error {
	payload := backend.ItemPayload{
		Task:     req.Task,
		Owner:    req.Owner,
		Priority: string(req.Priority),
		DueDate:  req.DueDate,
	}
	if req.Status != "" {
		payload.Status = req.Status.Wire()
	}

	return e.run(ctx, mutation{
		op: "update item",
		apply: func(items []action.Item) []action.Item {
			return replaceItem(items, id, func(it action.Item) action.Item {
				if req.Task != "" {
					it.Task = req.Task
				}
				if req.Owner != "" {
					it.Owner = req.Owner
				}
				if req.Status != "" {
					it.Status = req.Status
				}
				if req.Priority != "" {
					it.Priority = req.Priority
				}
				if req.DueDate != nil {
					it.DueDate = req.DueDate
				}
				return it
			})
		},
		remote: func(ctx context.Context) (*action.Raw, error) {
			raw, err := e.router.update(ctx, id, payload)
			if err != nil {
				return nil, err
			}
			return &raw, nil
		},
		confirm: func(items []action.Item, canonical action.Item) []action.Item {
			return replaceItem(items, id, func(action.Item) action.Item { return canonical })
		},
		announce: func(canonical *action.Item) {
			e.bus.PublishItemUpdated(eventbus.ItemUpdatedPayload{Item: canonical})
		},
	})
}

// CreateRequest carries the fields for a new item plus the projects to link
// it to after creation.
type CreateRequest struct {
	Task           string
	Owner          string
	Status         action.Status
	Priority       action.Priority
	DueDate        *time.Time
	LinkProjectIDs []string
}

// Create optimistically inserts a new item and creates it via the
// mode-routed endpoint, then links it to the requested projects. Returns the
// provisional local id, which is replaced by the backend-assigned id once
// the creation is confirmed.
//
// The multi-step flow is not atomic: if creation succeeds but a link call
// fails, the item stays created and the failure is surfaced as an aggregate
// error without rolling anything back.
func (e *Engine) Create(ctx context.Context, req CreateRequest) (string, error) {
	status := req.Status
	if status == "" {
		status = action.StatusPending
	}
	priority := req.Priority
	if priority == "" {
		priority = action.PriorityNone
	}

	tempID := "local-" + uuid.NewString()
	optimistic := action.Item{
		ID:       tempID,
		Task:     req.Task,
		Owner:    req.Owner,
		Status:   status,
		Priority: priority,
		DueDate:  req.DueDate,
	}

	payload := backend.ItemPayload{
		Task:     req.Task,
		Owner:    req.Owner,
		Status:   status.Wire(),
		Priority: string(priority),
		DueDate:  req.DueDate,
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return "", fmt.Errorf("engine is closed")
	}
	snapshot := cloneItems(e.items)
	e.items = append(cloneItems(e.items), optimistic)
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		raw, err := e.router.create(ctx, payload)
		if err != nil && raw.ID == "" {
			// Creation itself failed: full rollback.
			e.mu.Lock()
			if e.closed {
				e.mu.Unlock()
				return
			}
			e.items = snapshot
			e.errMsg = fmt.Sprintf("create item failed: %v", err)
			e.mu.Unlock()

			e.log.Warn().Err(err).Msg("create rolled back")
			e.bus.PublishMutationFailed(eventbus.MutationFailedPayload{Op: "create item", Err: err.Error()})
			return
		}

		canonical := action.Normalize(raw)

		var linkErrs []string
		if err != nil {
			// Created under the project but the implicit link failed.
			linkErrs = append(linkErrs, err.Error())
		}

		for _, pid := range e.router.linkTargets(req.LinkProjectIDs) {
			if canonical.LinkedTo(pid) {
				continue
			}
			if err := e.router.client.LinkItemToProject(ctx, pid, canonical.ID); err != nil {
				linkErrs = append(linkErrs, fmt.Sprintf("project %s: %v", pid, err))
				continue
			}
			canonical.ProjectIDs = append(canonical.ProjectIDs, pid)
		}

		e.mu.Lock()
		if e.closed {
			e.mu.Unlock()
			return
		}
		e.items = replaceItem(e.items, tempID, func(action.Item) action.Item { return canonical })
		if len(linkErrs) > 0 {
			// Partial link failure: the created item stays.
			e.errMsg = fmt.Sprintf("item created but linking failed: %s", strings.Join(linkErrs, "; "))
		} else {
			e.errMsg = ""
		}
		e.mu.Unlock()

		if len(linkErrs) > 0 {
			e.log.Warn().Strs("errors", linkErrs).Str("id", canonical.ID).Msg("partial link failure")
			e.bus.PublishMutationFailed(eventbus.MutationFailedPayload{
				Op:  "link created item",
				Err: strings.Join(linkErrs, "; "),
			})
		}
		e.bus.PublishItemCreated(eventbus.ItemCreatedPayload{Item: &canonical})
	}()

	return tempID, nil
}

// Delete optimistically removes an item using the mode's delete semantics:
// a hard delete on the global board, an unlink on a project board. Meeting
// items are read-only and return ErrReadOnly without touching state.
func (e *Engine) Delete(ctx context.Context, id string) error {
	if e.router.mode == ModeMeeting {
		return ErrReadOnly
	}

	return e.run(ctx, mutation{
		op: "delete item",
		apply: func(items []action.Item) []action.Item {
			return removeItem(items, id)
		},
		remote: func(ctx context.Context) (*action.Raw, error) {
			return nil, e.router.delete(ctx, id)
		},
		announce: func(*action.Item) {
			e.bus.PublishItemDeleted(eventbus.ItemDeletedPayload{ID: id})
		},
	})
}

// PermanentDelete hard-deletes an item regardless of any project linkage.
// Only the global board offers this operation.
func (e *Engine) PermanentDelete(ctx context.Context, id string) error {
	if e.router.mode != ModeGlobal {
		return ErrGlobalOnly
	}

	return e.run(ctx, mutation{
		op: "permanent delete",
		apply: func(items []action.Item) []action.Item {
			return removeItem(items, id)
		},
		remote: func(ctx context.Context) (*action.Raw, error) {
			return nil, e.router.client.DeleteItem(ctx, id)
		},
		announce: func(*action.Item) {
			e.bus.PublishItemDeleted(eventbus.ItemDeletedPayload{ID: id})
		},
	})
}

// Link optimistically associates an item with a project.
func (e *Engine) Link(ctx context.Context, id, projectID string) error {
	return e.run(ctx, mutation{
		op: "link item",
		apply: func(items []action.Item) []action.Item {
			return replaceItem(items, id, func(it action.Item) action.Item {
				if !it.LinkedTo(projectID) {
					it.ProjectIDs = append(it.ProjectIDs, projectID)
				}
				return it
			})
		},
		remote: func(ctx context.Context) (*action.Raw, error) {
			return nil, e.router.client.LinkItemToProject(ctx, projectID, id)
		},
		announce: func(*action.Item) {
			e.publishLocalUpdate(id)
		},
	})
}

// Unlink optimistically dissociates an item from a project. The item itself
// persists and may remain linked elsewhere.
func (e *Engine) Unlink(ctx context.Context, id, projectID string) error {
	return e.run(ctx, mutation{
		op: "unlink item",
		apply: func(items []action.Item) []action.Item {
			return replaceItem(items, id, func(it action.Item) action.Item {
				for i, pid := range it.ProjectIDs {
					if pid == projectID {
						it.ProjectIDs = append(it.ProjectIDs[:i], it.ProjectIDs[i+1:]...)
						break
					}
				}
				return it
			})
		},
		remote: func(ctx context.Context) (*action.Raw, error) {
			return nil, e.router.client.UnlinkItemFromProject(ctx, projectID, id)
		},
		announce: func(*action.Item) {
			e.publishLocalUpdate(id)
		},
	})
}

// publishLocalUpdate emits an ItemUpdated event with the current local copy
// for operations that have no canonical backend response.
func (e *Engine) publishLocalUpdate(id string) {
	e.mu.Lock()
	var item *action.Item
	for i := range e.items {
		if e.items[i].ID == id {
			clone := cloneItems(e.items[i : i+1])[0]
			item = &clone
			break
		}
	}
	e.mu.Unlock()

	if item != nil {
		e.bus.PublishItemUpdated(eventbus.ItemUpdatedPayload{Item: item})
	}
}

// replaceItem maps fn over the item with the given id, leaving everything
// else untouched. Missing ids are a no-op.
func replaceItem(items []action.Item, id string, fn func(action.Item) action.Item) []action.Item {
	for i := range items {
		if items[i].ID == id {
			items[i] = fn(items[i])
			break
		}
	}
	return items
}

func removeItem(items []action.Item, id string) []action.Item {
	for i := range items {
		if items[i].ID == id {
			return append(items[:i], items[i+1:]...)
		}
	}
	return items
}
