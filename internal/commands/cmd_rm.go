package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/boardsync/internal/core/action"
)

type RmCmd struct {
	flags *Flags

	// flags
	permanent bool
}

// NewRmCmd creates a new rm command.
func NewRmCmd(flags *Flags) *RmCmd {
	return &RmCmd{flags: flags}
}

// Register adds the rm command to the application.
func (cmd *RmCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "rm",
		Usage:     "Remove an item from the board",
		UsageText: "boardsync rm <id> [--permanent]",
		Description: `Removes an item using the board's delete semantics: a hard delete on
the global board, an unlink on a project board. Meeting items cannot
be removed.

--permanent hard-deletes regardless of project linkage and is only
available on the global board.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "permanent",
				Usage:       "hard-delete even if linked to projects (global board only)",
				Destination: &cmd.permanent,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RmCmd) run(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: boardsync rm <id>")
	}
	id := c.Args().Get(0)

	engine, cleanup, err := newEngine(ctx, cmd.flags, action.DefaultCriteria())
	if err != nil {
		return err
	}
	defer cleanup()

	if err := engine.Fetch(ctx); err != nil {
		return err
	}

	if cmd.permanent {
		err = engine.PermanentDelete(ctx, id)
	} else {
		err = engine.Delete(ctx, id)
	}
	if err != nil {
		return fmt.Errorf("remove item: %w", err)
	}
	engine.Wait()

	if msg := engine.Err(); msg != "" {
		return cli.Exit(msg, 1)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, "removed")
	return nil
}
