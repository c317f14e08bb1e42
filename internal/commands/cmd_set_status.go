package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/boardsync/internal/core/action"
)

type SetStatusCmd struct {
	flags *Flags
}

// NewSetStatusCmd creates a new set-status command.
func NewSetStatusCmd(flags *Flags) *SetStatusCmd {
	return &SetStatusCmd{flags: flags}
}

// Register adds the set-status command to the application.
func (cmd *SetStatusCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "set-status",
		Usage:     "Move an item to a status bucket",
		UsageText: "boardsync set-status <id> <status>",
		Description: `Sets an item's status. Accepts pending, in-progress, and completed;
underscore spellings are normalized.

Examples:
  boardsync set-status abc123 in-progress
  boardsync set-status abc123 completed`,
		ShellComplete: StatusCompleter(),
		Action:        cmd.run,
	})

	return app
}

func (cmd *SetStatusCmd) run(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 2 {
		return fmt.Errorf("usage: boardsync set-status <id> <status>")
	}

	id := c.Args().Get(0)
	status := action.ParseStatus(c.Args().Get(1))

	engine, cleanup, err := newEngine(ctx, cmd.flags, action.DefaultCriteria())
	if err != nil {
		return err
	}
	defer cleanup()

	if err := engine.Fetch(ctx); err != nil {
		return err
	}

	if err := engine.SetStatus(ctx, id, status); err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	engine.Wait()

	if msg := engine.Err(); msg != "" {
		return cli.Exit(msg, 1)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "%s -> %s\n", id, status)
	return nil
}
