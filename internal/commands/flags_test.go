package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/boardsync/internal/core/config"
)

func TestFlags_BoardConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Board.Mode = config.ModeProject
	cfg.Board.ProjectID = "42"
	cfg.Board.UserName = "alice"

	t.Run("no overrides returns config values", func(t *testing.T) {
		flags := &Flags{Config: &cfg}
		board := flags.BoardConfig()
		assert.Equal(t, config.ModeProject, board.Mode)
		assert.Equal(t, "42", board.ProjectID)
		assert.Equal(t, "alice", board.UserName)
	})

	t.Run("command line overrides win", func(t *testing.T) {
		flags := &Flags{
			Config:    &cfg,
			Mode:      config.ModeGlobal,
			ProjectID: "99",
		}
		board := flags.BoardConfig()
		assert.Equal(t, config.ModeGlobal, board.Mode)
		assert.Equal(t, "99", board.ProjectID)
		assert.Equal(t, "alice", board.UserName, "non-overridden fields pass through")
	})
}

func TestLoadSnapshot(t *testing.T) {
	t.Run("missing path errors", func(t *testing.T) {
		_, err := loadSnapshot("")
		require.Error(t, err)
	})

	t.Run("reads raw items", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "snapshot.json")
		require.NoError(t, os.WriteFile(path, []byte(`[
			{"id": "m1", "task": "follow up", "status": "pending"},
			{"id": "m2", "description": "send notes"}
		]`), 0o644))

		raws, err := loadSnapshot(path)
		require.NoError(t, err)
		require.Len(t, raws, 2)
		assert.Equal(t, "follow up", raws[0].Task)
		assert.Equal(t, "send notes", raws[1].Description)
	})

	t.Run("rejects invalid json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "snapshot.json")
		require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

		_, err := loadSnapshot(path)
		require.Error(t, err)
	})
}
