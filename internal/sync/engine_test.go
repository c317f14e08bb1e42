package sync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/boardsync/internal/backend/backendtest"
	"github.com/colonyops/boardsync/internal/core/action"
	"github.com/colonyops/boardsync/internal/core/eventbus"
	"github.com/colonyops/boardsync/internal/core/eventbus/testbus"
)

var engineNow = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, fake *backendtest.Fake, opts Options) (*Engine, *testbus.Bus) {
	t.Helper()

	bus := testbus.New(t)
	eng, err := New(fake, bus.EventBus, opts, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() {
		eng.Close()
		eng.Wait()
	})
	return eng, bus
}

func TestNew(t *testing.T) {
	fake := backendtest.New()
	bus := testbus.New(t)

	t.Run("project mode requires project id", func(t *testing.T) {
		_, err := New(fake, bus.EventBus, Options{Mode: ModeProject}, zerolog.Nop())
		require.Error(t, err)
	})

	t.Run("meeting mode requires transcription id", func(t *testing.T) {
		_, err := New(fake, bus.EventBus, Options{Mode: ModeMeeting}, zerolog.Nop())
		require.Error(t, err)
	})

	t.Run("unknown mode rejected", func(t *testing.T) {
		_, err := New(fake, bus.EventBus, Options{Mode: "kanban"}, zerolog.Nop())
		require.Error(t, err)
	})
}

func TestEngine_Fetch(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces collection and publishes refresh", func(t *testing.T) {
		fake := backendtest.New()
		fake.Seed(
			action.Raw{ID: "1", Description: "review budget", Status: "in_progress"},
			action.Raw{ID: "2", Title: "ship release"},
		)
		eng, bus := newTestEngine(t, fake, Options{Mode: ModeGlobal})

		require.NoError(t, eng.Fetch(ctx))

		items := eng.Items()
		require.Len(t, items, 2)
		assert.Equal(t, "review budget", items[0].Task)
		assert.Equal(t, action.StatusInProgress, items[0].Status)
		assert.Equal(t, "ship release", items[1].Task)
		assert.Empty(t, eng.Err())
		bus.AssertPublished(t, eventbus.EventItemsRefreshed)
	})

	t.Run("failure clears collection and sets error flag", func(t *testing.T) {
		fake := backendtest.New()
		fake.Seed(action.Raw{ID: "1", Task: "a"})
		eng, bus := newTestEngine(t, fake, Options{Mode: ModeGlobal})

		require.NoError(t, eng.Fetch(ctx))
		require.Len(t, eng.Items(), 1)

		fake.Fail("ListGlobalItems", errors.New("backend down"))
		require.Error(t, eng.Fetch(ctx))

		assert.Empty(t, eng.Items(), "stale data must not survive a failed fetch")
		assert.Contains(t, eng.Err(), "fetch failed")
		bus.AssertPublished(t, eventbus.EventFetchFailed)
	})

	t.Run("recovers after failure", func(t *testing.T) {
		fake := backendtest.New()
		fake.Seed(action.Raw{ID: "1", Task: "a"})
		eng, _ := newTestEngine(t, fake, Options{Mode: ModeGlobal})

		fake.Fail("ListGlobalItems", errors.New("backend down"))
		require.Error(t, eng.Fetch(ctx))

		fake.Fail("ListGlobalItems", nil)
		require.NoError(t, eng.Fetch(ctx))
		assert.Len(t, eng.Items(), 1)
		assert.Empty(t, eng.Err())
	})

	t.Run("project mode narrows by owner server-side", func(t *testing.T) {
		fake := backendtest.New()
		fake.Seed(
			action.Raw{ID: "1", Task: "a", Owner: "alice", ProjectIDs: []string{"7"}},
			action.Raw{ID: "2", Task: "b", Owner: "bob", ProjectIDs: []string{"7"}},
		)
		eng, _ := newTestEngine(t, fake, Options{
			Mode:      ModeProject,
			ProjectID: "7",
			Criteria:  action.Criteria{ShowOnlyMyTasks: true, FilterUserName: "alice", ShowCompleted: true},
		})

		require.NoError(t, eng.Fetch(ctx))
		items := eng.Items()
		require.Len(t, items, 1)
		assert.Equal(t, "alice", items[0].Owner)
	})

	t.Run("meeting mode serves snapshot", func(t *testing.T) {
		fake := backendtest.New()
		eng, _ := newTestEngine(t, fake, Options{
			Mode:            ModeMeeting,
			TranscriptionID: "tr-1",
			Snapshot: []action.Raw{
				{ID: "m1", Task: "follow up", Status: "pending"},
			},
		})

		require.NoError(t, eng.Fetch(ctx))
		assert.Len(t, eng.Items(), 1)
		assert.Empty(t, fake.Calls())
	})
}

func TestEngine_SetCriteria(t *testing.T) {
	t.Run("rapid changes collapse into one refetch", func(t *testing.T) {
		fake := backendtest.New()
		fake.Seed(action.Raw{ID: "1", Task: "a"})
		eng, _ := newTestEngine(t, fake, Options{Mode: ModeGlobal, Debounce: 25 * time.Millisecond})

		for _, q := range []string{"b", "bu", "bud"} {
			eng.SetCriteria(action.Criteria{TimeHorizon: action.HorizonAll, SearchQuery: q, ShowCompleted: true})
		}

		require.Eventually(t, func() bool {
			return countCalls(fake, "ListGlobalItems") == 1
		}, time.Second, 5*time.Millisecond)

		// Quiescence: no further fetches fire.
		time.Sleep(3 * 25 * time.Millisecond)
		assert.Equal(t, 1, countCalls(fake, "ListGlobalItems"))
		assert.Equal(t, "bud", eng.Criteria().SearchQuery)
	})

	t.Run("completed visibility forced outside project mode", func(t *testing.T) {
		fake := backendtest.New()
		eng, _ := newTestEngine(t, fake, Options{Mode: ModeGlobal, Debounce: time.Hour})

		eng.SetCriteria(action.Criteria{TimeHorizon: action.HorizonAll, ShowCompleted: false})
		assert.True(t, eng.Criteria().ShowCompleted)
	})

	t.Run("project mode honors completed visibility", func(t *testing.T) {
		fake := backendtest.New()
		eng, _ := newTestEngine(t, fake, Options{Mode: ModeProject, ProjectID: "7", Debounce: time.Hour})

		eng.SetCriteria(action.Criteria{TimeHorizon: action.HorizonAll, ShowCompleted: false})
		assert.False(t, eng.Criteria().ShowCompleted)
	})
}

func TestEngine_DerivedViews(t *testing.T) {
	ctx := context.Background()

	fake := backendtest.New()
	due := engineNow.AddDate(0, 0, 3)
	fake.Seed(
		action.Raw{ID: "1", Task: "write report", Owner: "alice", Status: "pending", DueDate: &due},
		action.Raw{ID: "2", Task: "fix build", Owner: "bob", Status: "in_progress"},
		action.Raw{ID: "3", Task: "old cleanup", Owner: "alice", Status: "completed"},
	)
	eng, _ := newTestEngine(t, fake, Options{Mode: ModeGlobal, Debounce: time.Hour})
	require.NoError(t, eng.Fetch(ctx))

	t.Run("filtered view applies criteria without touching the collection", func(t *testing.T) {
		eng.SetCriteria(action.Criteria{TimeHorizon: action.HorizonAll, SearchQuery: "alice", ShowCompleted: true})

		filtered := eng.FilteredItems(engineNow)
		require.Len(t, filtered, 2)
		assert.Len(t, eng.Items(), 3, "authoritative collection stays complete")
	})

	t.Run("board groups by status bucket", func(t *testing.T) {
		eng.SetCriteria(action.Criteria{TimeHorizon: action.HorizonAll, ShowCompleted: true})

		board := eng.Board(engineNow)
		assert.Len(t, board.Pending, 1)
		assert.Len(t, board.InProgress, 1)
		assert.Len(t, board.Completed, 1)
	})
}

func TestEngine_AvailableToLink(t *testing.T) {
	ctx := context.Background()

	fake := backendtest.New()
	fake.Seed(
		action.Raw{ID: "1", Task: "a", ProjectIDs: []string{"7"}},
		action.Raw{ID: "2", Task: "b"},
		action.Raw{ID: "3", Task: "c", ProjectIDs: []string{"8"}},
	)
	eng, _ := newTestEngine(t, fake, Options{Mode: ModeProject, ProjectID: "7", Debounce: time.Hour})

	items, err := eng.AvailableToLink(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "3"}, itemIDsOf(items))
}

func TestEngine_Close(t *testing.T) {
	ctx := context.Background()

	fake := backendtest.New()
	fake.Seed(action.Raw{ID: "1", Task: "a"})
	eng, bus := newTestEngine(t, fake, Options{Mode: ModeGlobal, Debounce: 10 * time.Millisecond})

	eng.SetCriteria(action.Criteria{TimeHorizon: action.HorizonAll, ShowCompleted: true})
	eng.Close()

	require.NoError(t, eng.Fetch(ctx))
	assert.Empty(t, fake.Calls(), "closed engine must not hit the backend")
	bus.AssertNotPublished(t, eventbus.EventItemsRefreshed, 50*time.Millisecond)

	require.Error(t, eng.SetStatus(ctx, "1", action.StatusCompleted))
}

func TestEngine_StaleResponses(t *testing.T) {
	t.Run("older response never overwrites newer collection", func(t *testing.T) {
		client := &gatedClient{Fake: backendtest.New()}
		bus := testbus.New(t)
		eng, err := New(client, bus.EventBus, Options{Mode: ModeGlobal, Debounce: time.Hour}, zerolog.Nop())
		require.NoError(t, err)
		t.Cleanup(eng.Close)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = eng.Fetch(context.Background())
		}()
		require.Eventually(t, func() bool { return client.parked() == 1 }, time.Second, 5*time.Millisecond)

		go func() {
			defer wg.Done()
			_ = eng.Fetch(context.Background())
		}()
		require.Eventually(t, func() bool { return client.parked() == 2 }, time.Second, 5*time.Millisecond)

		// Resolve the second fetch first, then let the first one land late.
		client.release(1, []action.Raw{{ID: "new", Task: "fresh"}})
		require.Eventually(t, func() bool {
			items := eng.Items()
			return len(items) == 1 && items[0].ID == "new"
		}, time.Second, 5*time.Millisecond)

		client.release(0, []action.Raw{{ID: "old", Task: "stale"}})
		wg.Wait()

		items := eng.Items()
		require.Len(t, items, 1)
		assert.Equal(t, "new", items[0].ID, "superseded response must be dropped")
	})

	t.Run("response landing after close is a no-op", func(t *testing.T) {
		client := &gatedClient{Fake: backendtest.New()}
		bus := testbus.New(t)
		eng, err := New(client, bus.EventBus, Options{Mode: ModeGlobal, Debounce: time.Hour}, zerolog.Nop())
		require.NoError(t, err)

		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = eng.Fetch(context.Background())
		}()
		require.Eventually(t, func() bool { return client.parked() == 1 }, time.Second, 5*time.Millisecond)

		eng.Close()
		client.release(0, []action.Raw{{ID: "late", Task: "too late"}})
		<-done

		assert.Empty(t, eng.Items())
		bus.AssertNotPublished(t, eventbus.EventItemsRefreshed, 50*time.Millisecond)
	})
}

// gatedClient parks global list calls until the test releases them, so fetch
// responses can be resolved out of order.
type gatedClient struct {
	*backendtest.Fake

	mu    sync.Mutex
	gates []chan []action.Raw
}

func (c *gatedClient) ListGlobalItems(ctx context.Context) ([]action.Raw, error) {
	ch := make(chan []action.Raw, 1)
	c.mu.Lock()
	c.gates = append(c.gates, ch)
	c.mu.Unlock()
	return <-ch, nil
}

func (c *gatedClient) parked() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.gates)
}

func (c *gatedClient) release(i int, raws []action.Raw) {
	c.mu.Lock()
	ch := c.gates[i]
	c.mu.Unlock()
	ch <- raws
}

func countCalls(fake *backendtest.Fake, op string) int {
	n := 0
	for _, c := range fake.Calls() {
		if c == op {
			n++
		}
	}
	return n
}

func itemIDsOf(items []action.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
