// Package sync implements the data-synchronization core behind the task
// board: an in-memory, single-session reconciling cache over the backend
// collection, with mode-dependent routing and optimistic mutations.
package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/boardsync/internal/backend"
	"github.com/colonyops/boardsync/internal/core/action"
	"github.com/colonyops/boardsync/internal/core/eventbus"
)

const defaultDebounce = 500 * time.Millisecond

// Options configures an Engine. Mode and its scoping identifier are fixed
// for the engine's lifetime.
type Options struct {
	Mode            Mode
	ProjectID       string
	TranscriptionID string

	// Snapshot is the externally supplied item set for meeting mode.
	Snapshot []action.Raw

	// Debounce is the quiescence window between the last criteria change
	// and the server refetch. Zero means the 500ms default.
	Debounce time.Duration

	// Criteria is the initial filter state.
	Criteria action.Criteria
}

// Engine owns the authoritative item collection and orchestrates fetching,
// filtering, derivation, and optimistic mutation. The collection is
// exclusively owned by the engine: consumers receive copies and route all
// changes through the mutation methods.
type Engine struct {
	router   router
	bus      *eventbus.EventBus
	log      zerolog.Logger
	debounce time.Duration

	mu       sync.Mutex
	items    []action.Item
	criteria action.Criteria
	loading  bool
	errMsg   string
	closed   bool

	// gen is the fetch generation counter. Every scheduled refresh, criteria
	// change, and Close bumps it; a fetch response is applied only if its
	// generation is still current, so stale responses never overwrite newer
	// state.
	gen   uint64
	timer *time.Timer

	wg sync.WaitGroup
}

// New creates an engine for the given mode. The bus must be started by the
// caller; the engine only publishes to it.
func New(client backend.Client, bus *eventbus.EventBus, opts Options, log zerolog.Logger) (*Engine, error) {
	switch opts.Mode {
	case ModeGlobal:
	case ModeProject:
		if opts.ProjectID == "" {
			return nil, fmt.Errorf("project mode requires a project id")
		}
	case ModeMeeting:
		if opts.TranscriptionID == "" {
			return nil, fmt.Errorf("meeting mode requires a transcription id")
		}
	default:
		return nil, fmt.Errorf("unknown mode %q", opts.Mode)
	}

	debounce := opts.Debounce
	if debounce == 0 {
		debounce = defaultDebounce
	}

	criteria := opts.Criteria
	if criteria.TimeHorizon == "" {
		criteria.TimeHorizon = action.HorizonAll
	}

	e := &Engine{
		router: router{
			client:          client,
			mode:            opts.Mode,
			projectID:       opts.ProjectID,
			transcriptionID: opts.TranscriptionID,
			snapshot:        opts.Snapshot,
		},
		bus:      bus,
		log:      log.With().Str("component", "sync-engine").Str("mode", string(opts.Mode)).Logger(),
		debounce: debounce,
		criteria: criteria,
	}
	e.normalizeCriteria(&e.criteria)

	return e, nil
}

// Mode returns the engine's fixed routing mode.
func (e *Engine) Mode() Mode {
	return e.router.mode
}

// Fetch retrieves the collection for the engine's mode and full-replaces the
// authoritative items on success. On failure the collection is cleared so no
// stale data is shown, and the error flag is set. Safe to call repeatedly.
func (e *Engine) Fetch(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.gen++
	gen := e.gen
	e.loading = true
	owner := e.ownerParamLocked()
	e.mu.Unlock()

	raws, err := e.router.list(ctx, owner)

	e.mu.Lock()
	if e.closed || gen != e.gen {
		// A newer schedule superseded this response; drop it.
		e.mu.Unlock()
		return nil
	}
	e.loading = false

	if err != nil {
		e.items = nil
		e.errMsg = fmt.Sprintf("fetch failed: %v", err)
		e.mu.Unlock()

		e.log.Error().Err(err).Msg("list fetch failed")
		e.bus.PublishFetchFailed(eventbus.FetchFailedPayload{Err: err.Error()})
		return fmt.Errorf("fetch items: %w", err)
	}

	e.items = action.NormalizeAll(raws)
	e.errMsg = ""
	count := len(e.items)
	e.mu.Unlock()

	e.log.Debug().Int("count", count).Msg("collection replaced")
	e.bus.PublishItemsRefreshed(eventbus.ItemsRefreshedPayload{Count: count})
	return nil
}

// SetCriteria replaces the active filter criteria and schedules a debounced
// server refetch. Rapid successive changes within the quiescence window
// collapse into a single request; any in-flight fetch from before the change
// is invalidated and its response dropped.
func (e *Engine) SetCriteria(criteria action.Criteria) {
	e.normalizeCriteria(&criteria)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}

	e.criteria = criteria
	e.gen++

	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(e.debounce, func() {
		if err := e.Fetch(context.Background()); err != nil {
			e.log.Debug().Err(err).Msg("debounced refetch failed")
		}
	})
}

// normalizeCriteria enforces that completed-visibility filtering applies in
// project mode only.
func (e *Engine) normalizeCriteria(c *action.Criteria) {
	if e.router.mode != ModeProject {
		c.ShowCompleted = true
	}
}

// ownerParamLocked returns the server-side owner filter for project
// listings. Requires e.mu held.
func (e *Engine) ownerParamLocked() string {
	if e.router.mode == ModeProject && e.criteria.ShowOnlyMyTasks {
		return e.criteria.FilterUserName
	}
	return ""
}

// Criteria returns the active filter criteria.
func (e *Engine) Criteria() action.Criteria {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.criteria
}

// Items returns a copy of the authoritative collection.
func (e *Engine) Items() []action.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneItems(e.items)
}

// FilteredItems derives the filtered view of the collection. Computed fresh
// on every call; never cached.
func (e *Engine) FilteredItems(now time.Time) []action.Item {
	e.mu.Lock()
	items := cloneItems(e.items)
	criteria := e.criteria
	e.mu.Unlock()

	return criteria.Apply(items, now)
}

// Board derives the grouped-by-status view of the filtered collection.
func (e *Engine) Board(now time.Time) action.Board {
	return action.GroupByStatus(e.FilteredItems(now))
}

// Loading reports whether a list fetch is in flight.
func (e *Engine) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

// Err returns the human-readable error flag from the most recent failure,
// or empty when the last operation succeeded. Failures are never fatal: the
// engine stays usable after any of them.
func (e *Engine) Err() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errMsg
}

// AvailableToLink returns all items not yet linked to the given project,
// for link-dialog population. This reads the backend directly and does not
// touch the authoritative collection.
func (e *Engine) AvailableToLink(ctx context.Context, projectID string) ([]action.Item, error) {
	raws, err := e.router.client.ListAllItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list available items: %w", err)
	}

	var out []action.Item
	for _, item := range action.NormalizeAll(raws) {
		if !item.LinkedTo(projectID) {
			out = append(out, item)
		}
	}
	return out, nil
}

// Wait blocks until all in-flight mutation resolutions have completed.
// Intended for CLI use and tests; a long-lived consumer reacts to bus events
// instead.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// Close cancels any pending debounce timer and invalidates in-flight work.
// Network requests are not aborted, but their resolutions become no-ops.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.gen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func cloneItems(items []action.Item) []action.Item {
	out := make([]action.Item, len(items))
	copy(out, items)
	for i := range out {
		if out[i].ProjectIDs != nil {
			ids := make([]string, len(out[i].ProjectIDs))
			copy(ids, out[i].ProjectIDs)
			out[i].ProjectIDs = ids
		}
	}
	return out
}
