package eventbus

import (
	"context"
	"sync"
)

type envelope struct {
	event   Event
	payload any
}

// EventBus dispatches typed events to subscribers on a single goroutine
// started via Start. Publishing never blocks: events are dropped when the
// buffer is full (see OnDrop).
type EventBus struct {
	ch    chan envelope
	hooks hooks

	mu   sync.RWMutex
	subs map[Event][]func(any)
}

// New creates a bus with the given buffer size.
func New(buffer int) *EventBus {
	return &EventBus{
		ch:   make(chan envelope, buffer),
		subs: map[Event][]func(any){},
	}
}

// Start dispatches events until ctx is cancelled. Subscriber panics are
// recovered and reported to OnPanic hooks.
func (bus *EventBus) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-bus.ch:
			bus.dispatch(env)
		}
	}
}

func (bus *EventBus) dispatch(env envelope) {
	bus.mu.RLock()
	subs := make([]func(any), len(bus.subs[env.event]))
	copy(subs, bus.subs[env.event])
	bus.mu.RUnlock()

	for _, fn := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					bus.runOnPanic(env.event, env.payload, r)
				}
			}()
			fn(env.payload)
		}()
	}
}

func (bus *EventBus) subscribe(event Event, fn func(any)) {
	bus.mu.Lock()
	bus.subs[event] = append(bus.subs[event], fn)
	bus.mu.Unlock()
	bus.runOnSubscribe(event)
}

// Typed publish/subscribe pairs, one per event in events.go.

func (bus *EventBus) PublishItemsRefreshed(p ItemsRefreshedPayload) { bus.send(EventItemsRefreshed, p) }
func (bus *EventBus) PublishItemCreated(p ItemCreatedPayload)       { bus.send(EventItemCreated, p) }
func (bus *EventBus) PublishItemUpdated(p ItemUpdatedPayload)       { bus.send(EventItemUpdated, p) }
func (bus *EventBus) PublishItemDeleted(p ItemDeletedPayload)       { bus.send(EventItemDeleted, p) }
func (bus *EventBus) PublishFetchFailed(p FetchFailedPayload)       { bus.send(EventFetchFailed, p) }
func (bus *EventBus) PublishMutationFailed(p MutationFailedPayload) { bus.send(EventMutationFailed, p) }

func (bus *EventBus) SubscribeItemsRefreshed(fn func(ItemsRefreshedPayload)) {
	bus.subscribe(EventItemsRefreshed, func(v any) {
		if p, ok := v.(ItemsRefreshedPayload); ok {
			fn(p)
		}
	})
}

func (bus *EventBus) SubscribeItemCreated(fn func(ItemCreatedPayload)) {
	bus.subscribe(EventItemCreated, func(v any) {
		if p, ok := v.(ItemCreatedPayload); ok {
			fn(p)
		}
	})
}

func (bus *EventBus) SubscribeItemUpdated(fn func(ItemUpdatedPayload)) {
	bus.subscribe(EventItemUpdated, func(v any) {
		if p, ok := v.(ItemUpdatedPayload); ok {
			fn(p)
		}
	})
}

func (bus *EventBus) SubscribeItemDeleted(fn func(ItemDeletedPayload)) {
	bus.subscribe(EventItemDeleted, func(v any) {
		if p, ok := v.(ItemDeletedPayload); ok {
			fn(p)
		}
	})
}

func (bus *EventBus) SubscribeFetchFailed(fn func(FetchFailedPayload)) {
	bus.subscribe(EventFetchFailed, func(v any) {
		if p, ok := v.(FetchFailedPayload); ok {
			fn(p)
		}
	})
}

func (bus *EventBus) SubscribeMutationFailed(fn func(MutationFailedPayload)) {
	bus.subscribe(EventMutationFailed, func(v any) {
		if p, ok := v.(MutationFailedPayload); ok {
			fn(p)
		}
	})
}
