package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/boardsync/internal/core/action"
	"github.com/colonyops/boardsync/pkg/iojson"
)

type LsCmd struct {
	flags *Flags

	// flags
	jsonOutput    bool
	searchQuery   string
	onlyMine      bool
	horizon       string
	hideCompleted bool
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags) *LsCmd {
	return &LsCmd{flags: flags}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Usage:     "List action items",
		UsageText: "boardsync ls [--json] [--search <text>] [--mine] [--horizon <window>]",
		Description: `Displays the filtered item collection as a table.

Use --json for JSON-lines output. Filters mirror the board's interactive
criteria: time horizon, ownership, completed visibility, and free-text search.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
			&cli.StringFlag{
				Name:        "search",
				Aliases:     []string{"s"},
				Usage:       "free-text search over task, owner, and meeting title",
				Destination: &cmd.searchQuery,
			},
			&cli.BoolFlag{
				Name:        "mine",
				Usage:       "only show items owned by the configured user",
				Destination: &cmd.onlyMine,
			},
			&cli.StringFlag{
				Name:        "horizon",
				Usage:       "due-date window (all, 1week, 2weeks, 1month, 3months, 6months, 1year)",
				Value:       string(action.HorizonAll),
				Destination: &cmd.horizon,
			},
			&cli.BoolFlag{
				Name:        "hide-completed",
				Usage:       "hide completed items (project mode only)",
				Destination: &cmd.hideCompleted,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *LsCmd) criteria() action.Criteria {
	return action.Criteria{
		FilterUserName:  cmd.flags.Config.Board.UserName,
		ShowOnlyMyTasks: cmd.onlyMine,
		TimeHorizon:     action.TimeHorizon(cmd.horizon),
		ShowCompleted:   !cmd.hideCompleted,
		SearchQuery:     cmd.searchQuery,
	}
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	engine, cleanup, err := newEngine(ctx, cmd.flags, cmd.criteria())
	if err != nil {
		return err
	}
	defer cleanup()

	if err := engine.Fetch(ctx); err != nil {
		return err
	}

	items := engine.FilteredItems(time.Now())
	if len(items) == 0 {
		if !cmd.jsonOutput {
			fmt.Fprintf(os.Stderr, "No items found\n")
		}
		return nil
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, item := range items {
			if err := iojson.WriteLine(out, item); err != nil {
				return fmt.Errorf("encode item: %w", err)
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTATUS\tPRIORITY\tDUE\tOWNER\tTASK")

	for _, item := range items {
		due := ""
		if item.DueDate != nil {
			due = item.DueDate.Format("2006-01-02")
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			item.ID, item.Status, item.Priority, due, item.Owner, item.Task)
	}

	return w.Flush()
}
