package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/colonyops/boardsync/internal/backend"
	"github.com/colonyops/boardsync/internal/core/action"
	"github.com/colonyops/boardsync/internal/core/config"
	"github.com/colonyops/boardsync/internal/core/eventbus"
	"github.com/colonyops/boardsync/internal/core/logging"
	syncpkg "github.com/colonyops/boardsync/internal/sync"
)

// newEngine builds a sync engine from the resolved board configuration,
// starts its event bus, and returns a cleanup func that tears both down.
func newEngine(ctx context.Context, flags *Flags, criteria action.Criteria) (*syncpkg.Engine, func(), error) {
	board := flags.BoardConfig()
	cfg := config.Config{Backend: flags.Config.Backend, Board: board}
	// Deep validation so a missing base_url fails here with a config-shaped
	// message instead of surfacing later as a transport error.
	if err := cfg.ValidateDeep(""); err != nil {
		return nil, nil, err
	}

	client := backend.NewHTTPClient(cfg.Backend.BaseURL, backend.HTTPOptions{
		Token:   cfg.Backend.Token,
		Timeout: cfg.Backend.Timeout(),
	}, log.Logger)

	var snapshot []action.Raw
	if board.Mode == config.ModeMeeting {
		var err error
		snapshot, err = loadSnapshot(flags.SnapshotFile)
		if err != nil {
			return nil, nil, err
		}
	}

	bus := eventbus.New(32)
	busCtx, cancel := context.WithCancel(context.Background())
	go bus.Start(busCtx)

	// Surface async mutation failures on stderr; the optimistic result has
	// already been rolled back by the time these fire.
	bus.SubscribeMutationFailed(func(p eventbus.MutationFailedPayload) {
		fmt.Fprintf(os.Stderr, "%s: %s\n", p.Op, p.Err)
	})

	engine, err := syncpkg.New(client, bus, syncpkg.Options{
		Mode:            syncpkg.Mode(board.Mode),
		ProjectID:       board.ProjectID,
		TranscriptionID: board.TranscriptionID,
		Snapshot:        snapshot,
		Debounce:        board.Debounce(),
		Criteria:        criteria,
	}, logging.ComponentFor(ctx, "sync"))
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("create engine: %w", err)
	}

	cleanup := func() {
		engine.Wait()
		engine.Close()
		cancel()
	}
	return engine, cleanup, nil
}

// loadSnapshot reads the meeting snapshot items from a JSON file. Meeting
// mode has no listing endpoint, so the snapshot is the collection.
func loadSnapshot(path string) ([]action.Raw, error) {
	if path == "" {
		return nil, fmt.Errorf("meeting mode requires --snapshot with the meeting's items")
	}

	bits, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var raws []action.Raw
	if err := json.Unmarshal(bits, &raws); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return raws, nil
}
