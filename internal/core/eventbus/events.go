// Package eventbus provides a typed publish/subscribe event bus so
// consumers of the sync engine can react to refreshes and failures
// without polling engine state.
package eventbus

import (
	"github.com/colonyops/boardsync/internal/core/action"
)

// Event identifies an event type on the bus.
type Event string

// Event names. Keep list sorted A-Z.
const (
	EventFetchFailed     Event = "fetch.failed"
	EventItemCreated     Event = "item.created"
	EventItemDeleted     Event = "item.deleted"
	EventItemUpdated     Event = "item.updated"
	EventItemsRefreshed  Event = "items.refreshed"
	EventMutationFailed  Event = "mutation.failed"
)

// ItemsRefreshedPayload is emitted after a successful list fetch replaced
// the authoritative collection.
type ItemsRefreshedPayload struct {
	Count int
}

// ItemCreatedPayload is emitted when a created item is confirmed by the
// backend. Item is the canonical backend representation.
type ItemCreatedPayload struct {
	Item *action.Item
}

// ItemUpdatedPayload is emitted when an update is confirmed by the backend.
type ItemUpdatedPayload struct {
	Item *action.Item
}

// ItemDeletedPayload is emitted when a delete or unlink removal is confirmed.
type ItemDeletedPayload struct {
	ID string
}

// FetchFailedPayload is emitted when a list fetch fails. The collection has
// been cleared.
type FetchFailedPayload struct {
	Err string
}

// MutationFailedPayload is emitted when a mutation was rolled back.
type MutationFailedPayload struct {
	Op  string
	Err string
}
