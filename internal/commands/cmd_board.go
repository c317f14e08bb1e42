package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/boardsync/internal/core/action"
	"github.com/colonyops/boardsync/internal/core/styles"
)

type BoardCmd struct {
	flags *Flags

	// flags
	searchQuery string
	onlyMine    bool
	horizon     string
}

// NewBoardCmd creates a new board command
func NewBoardCmd(flags *Flags) *BoardCmd {
	return &BoardCmd{flags: flags}
}

// Register adds the board command to the application
func (cmd *BoardCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "board",
		Usage:     "Show items grouped by status",
		UsageText: "boardsync board [--search <text>] [--mine] [--horizon <window>]",
		Description: `Renders the filtered collection as three status columns:
pending, in-progress, and completed. Items with an unknown status land
in the pending column.`,
		Flags: []cli.Flag{
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
		},
		Action: cmd.run,
	})

	return app
}

// Run executes the board view. Exposed so the root command can use it as
// the default action.
func (cmd *BoardCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *BoardCmd) run(ctx context.Context, c *cli.Command) error {
	engine, cleanup, err := newEngine(ctx, cmd.flags, action.Criteria{
		FilterUserName:  cmd.flags.Config.Board.UserName,
		ShowOnlyMyTasks: cmd.onlyMine,
		TimeHorizon:     action.TimeHorizon(cmd.horizon),
		ShowCompleted:   true,
		SearchQuery:     cmd.searchQuery,
	})
	if err != nil {
		return err
	}
	defer cleanup()

	if err := engine.Fetch(ctx); err != nil {
		return err
	}

	now := time.Now()
	board := engine.Board(now)
	out := c.Root().Writer

	columns := []struct {
		title string
		items []action.Item
	}{
		{"Pending", board.Pending},
		{"In Progress", board.InProgress},
		{"Completed", board.Completed},
	}

	for _, col := range columns {
		_, _ = fmt.Fprintf(out, "%s %s\n",
			styles.ColumnStyle.Render(col.title),
			styles.MutedStyle.Render(fmt.Sprintf("(%d)", len(col.items))))

		if len(col.items) == 0 {
			_, _ = fmt.Fprintf(out, "  %s\n", styles.MutedStyle.Render("none"))
		}
		for _, item := range col.items {
			_, _ = fmt.Fprintf(out, "  %s %s", styles.StatusGlyph(item.Status), item.Task)
			if p := styles.PriorityLabel(item.Priority); p != "" {
				_, _ = fmt.Fprintf(out, " [%s]", p)
			}
			if item.DueDate != nil {
				due := item.DueDate.Format("2006-01-02")
				if item.DueDate.Before(now) && item.Status != action.StatusCompleted {
					due = styles.OverdueStyle.Render(due + " overdue")
				} else {
					due = styles.MutedStyle.Render(due)
				}
				_, _ = fmt.Fprintf(out, " %s", due)
			}
			if item.Owner != "" {
				_, _ = fmt.Fprintf(out, " %s", styles.MutedStyle.Render("@"+item.Owner))
			}
			_, _ = fmt.Fprintln(out)
		}
		_, _ = fmt.Fprintln(out)
	}

	return nil
}
