package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/boardsync/internal/core/action"
	"github.com/colonyops/boardsync/pkg/iojson"
)

type LinkCmd struct {
	flags *Flags

	// available flags
	jsonOutput bool
}

// NewLinkCmd creates a new link command group.
func NewLinkCmd(flags *Flags) *LinkCmd {
	return &LinkCmd{flags: flags}
}

// Register adds the link and unlink commands to the application.
func (cmd *LinkCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "link",
			Usage:     "Link an item to a project",
			UsageText: "boardsync link <id> <project>",
			Description: `Associates an existing item with a project. The item keeps its other
project links.

Examples:
  boardsync link abc123 42
  boardsync link available 42    # list items not yet linked to project 42`,
			Commands: []*cli.Command{
				cmd.availableCmd(),
			},
			Action: cmd.runLink,
		},
		&cli.Command{
			Name:      "unlink",
			Usage:     "Unlink an item from a project",
			UsageText: "boardsync unlink <id> <project>",
			Description: `Removes an item's association with a project. The item itself is
never deleted by this command.`,
			Action: cmd.runUnlink,
		},
	)

	return app
}

func (cmd *LinkCmd) availableCmd() *cli.Command {
	return &cli.Command{
		Name:      "available",
		Usage:     "List items not yet linked to a project",
		UsageText: "boardsync link available <project> [--json]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.runAvailable,
	}
}

func (cmd *LinkCmd) runLink(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 2 {
		return fmt.Errorf("usage: boardsync link <id> <project>")
	}
	return cmd.mutate(ctx, c, c.Args().Get(0), c.Args().Get(1), true)
}

func (cmd *LinkCmd) runUnlink(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 2 {
		return fmt.Errorf("usage: boardsync unlink <id> <project>")
	}
	return cmd.mutate(ctx, c, c.Args().Get(0), c.Args().Get(1), false)
}

func (cmd *LinkCmd) mutate(ctx context.Context, c *cli.Command, id, projectID string, link bool) error {
	engine, cleanup, err := newEngine(ctx, cmd.flags, action.DefaultCriteria())
	if err != nil {
		return err
	}
	defer cleanup()

	if err := engine.Fetch(ctx); err != nil {
		return err
	}

	verb := "link"
	if link {
		err = engine.Link(ctx, id, projectID)
	} else {
		verb = "unlink"
		err = engine.Unlink(ctx, id, projectID)
	}
	if err != nil {
		return fmt.Errorf("%s item: %w", verb, err)
	}
	engine.Wait()

	if msg := engine.Err(); msg != "" {
		return cli.Exit(msg, 1)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "%sed %s <-> project %s\n", verb, id, projectID)
	return nil
}

func (cmd *LinkCmd) runAvailable(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: boardsync link available <project>")
	}
	projectID := c.Args().Get(0)

	engine, cleanup, err := newEngine(ctx, cmd.flags, action.DefaultCriteria())
	if err != nil {
		return err
	}
	defer cleanup()

	items, err := engine.AvailableToLink(ctx, projectID)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	for _, item := range items {
		if cmd.jsonOutput {
			if err := iojson.WriteLine(out, item); err != nil {
				return err
			}
			continue
		}
		_, _ = fmt.Fprintf(out, "%s\t%s\n", item.ID, item.Task)
	}
	return nil
}
