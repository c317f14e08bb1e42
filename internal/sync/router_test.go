package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/boardsync/internal/backend"
	"github.com/colonyops/boardsync/internal/backend/backendtest"
	"github.com/colonyops/boardsync/internal/core/action"
)

func TestRouter_List(t *testing.T) {
	ctx := context.Background()

	t.Run("meeting serves snapshot without network", func(t *testing.T) {
		fake := backendtest.New()
		r := router{
			client:          fake,
			mode:            ModeMeeting,
			transcriptionID: "tr-1",
			snapshot: []action.Raw{
				{ID: "m1", Task: "follow up"},
				{ID: "m2", Task: "send notes"},
			},
		}

		raws, err := r.list(ctx, "")
		require.NoError(t, err)
		assert.Len(t, raws, 2)
		assert.Empty(t, fake.Calls())
	})

	t.Run("project passes owner filter through", func(t *testing.T) {
		fake := backendtest.New()
		fake.Seed(
			action.Raw{ID: "1", Task: "a", Owner: "alice", ProjectIDs: []string{"7"}},
			action.Raw{ID: "2", Task: "b", Owner: "bob", ProjectIDs: []string{"7"}},
		)
		r := router{client: fake, mode: ModeProject, projectID: "7"}

		raws, err := r.list(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, raws, 1)
		assert.Equal(t, "1", raws[0].ID)
	})
}

func TestRouter_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("project creates then links", func(t *testing.T) {
		fake := backendtest.New()
		r := router{client: fake, mode: ModeProject, projectID: "7"}

		raw, err := r.create(ctx, backend.ItemPayload{Task: "new"})
		require.NoError(t, err)
		assert.Contains(t, fake.Calls(), "CreateProjectItem/7")
		assert.Contains(t, fake.Calls(), "LinkItemToProject/7/"+raw.ID)
	})

	t.Run("project link failure returns raw with error", func(t *testing.T) {
		fake := backendtest.New()
		fake.Fail("LinkItemToProject/7", errors.New("boom"))
		r := router{client: fake, mode: ModeProject, projectID: "7"}

		raw, err := r.create(ctx, backend.ItemPayload{Task: "new"})
		require.Error(t, err)
		assert.NotEmpty(t, raw.ID, "created record must be surfaced despite link failure")
	})

	t.Run("meeting creates under transcription", func(t *testing.T) {
		fake := backendtest.New()
		r := router{client: fake, mode: ModeMeeting, transcriptionID: "tr-9"}

		_, err := r.create(ctx, backend.ItemPayload{Task: "new"})
		require.NoError(t, err)
		assert.Contains(t, fake.Calls(), "CreateMeetingItem/tr-9")
	})
}

func TestRouter_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("global uses dedicated endpoint", func(t *testing.T) {
		fake := backendtest.New()
		fake.Seed(action.Raw{ID: "1", Task: "a"})
		r := router{client: fake, mode: ModeGlobal}

		_, err := r.update(ctx, "1", backend.ItemPayload{Status: "in_progress"})
		require.NoError(t, err)
		assert.Contains(t, fake.Calls(), "UpdateGlobalItem/1")
	})

	t.Run("project uses shared endpoint", func(t *testing.T) {
		fake := backendtest.New()
		fake.Seed(action.Raw{ID: "1", Task: "a", ProjectIDs: []string{"7"}})
		r := router{client: fake, mode: ModeProject, projectID: "7"}

		_, err := r.update(ctx, "1", backend.ItemPayload{Status: "completed"})
		require.NoError(t, err)
		assert.Contains(t, fake.Calls(), "UpdateItem/1")
	})
}

func TestRouter_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("project unlinks instead of deleting", func(t *testing.T) {
		fake := backendtest.New()
		fake.Seed(action.Raw{ID: "1", Task: "a", ProjectIDs: []string{"7", "8"}})
		r := router{client: fake, mode: ModeProject, projectID: "7"}

		require.NoError(t, r.delete(ctx, "1"))
		assert.Contains(t, fake.Calls(), "UnlinkItemFromProject/7/1")
		assert.NotContains(t, fake.Calls(), "DeleteItem/1")

		raw, ok := fake.Item("1")
		require.True(t, ok, "item must survive a project-mode delete")
		assert.Equal(t, []string{"8"}, raw.ProjectIDs)
	})

	t.Run("meeting is read-only", func(t *testing.T) {
		fake := backendtest.New()
		r := router{client: fake, mode: ModeMeeting, transcriptionID: "tr-1"}

		require.ErrorIs(t, r.delete(ctx, "1"), ErrReadOnly)
		assert.Empty(t, fake.Calls())
	})

	t.Run("global hard-deletes", func(t *testing.T) {
		fake := backendtest.New()
		fake.Seed(action.Raw{ID: "1", Task: "a"})
		r := router{client: fake, mode: ModeGlobal}

		require.NoError(t, r.delete(ctx, "1"))
		assert.Equal(t, 0, fake.Len())
	})
}

func TestRouter_LinkTargets(t *testing.T) {
	t.Run("project excludes its own id", func(t *testing.T) {
		r := router{mode: ModeProject, projectID: "7"}
		assert.Equal(t, []string{"3", "9"}, r.linkTargets([]string{"3", "7", "9"}))
	})

	t.Run("global passes through", func(t *testing.T) {
		r := router{mode: ModeGlobal}
		assert.Equal(t, []string{"3", "7"}, r.linkTargets([]string{"3", "7"}))
	})
}
