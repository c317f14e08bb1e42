package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/boardsync/internal/core/action"
	syncpkg "github.com/colonyops/boardsync/internal/sync"
	"github.com/colonyops/boardsync/pkg/iojson"
)

// addInput is the JSON shape accepted by add --file.
type addInput struct {
	Task     string   `json:"task"`
	Owner    string   `json:"owner,omitempty"`
	Status   string   `json:"status,omitempty"`
	Priority string   `json:"priority,omitempty"`
	DueDate  string   `json:"due_date,omitempty"`
	Projects []string `json:"projects,omitempty"`
}

type AddCmd struct {
	flags *Flags

	// flags
	owner    string
	status   string
	priority string
	due      string
	projects []string

	fileInput iojson.FileReader[addInput]
}

// NewAddCmd creates a new add command.
func NewAddCmd(flags *Flags) *AddCmd {
	return &AddCmd{flags: flags}
}

// Register adds the add command to the application.
func (cmd *AddCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "add",
		Usage:     "Create an action item",
		UsageText: "boardsync add <task> [--owner <name>] [--priority <p>] [--due <date>] [--project <id>]",
		Description: `Creates an item on the current board. In project mode the item is
created under the project and linked to it; --project links it to
additional projects in the same call.

Examples:
  boardsync add "Review budget"
  boardsync add "Ship release" --owner alice --priority high --due 2026-09-15
  boardsync add --file item.json`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "owner",
				Aliases:     []string{"o"},
				Usage:       "owner of the item",
				Destination: &cmd.owner,
			},
			&cli.StringFlag{
				Name:        "status",
				Usage:       "initial status (pending, in-progress, completed)",
				Destination: &cmd.status,
			},
			&cli.StringFlag{
				Name:        "priority",
				Aliases:     []string{"p"},
				Usage:       "priority (high, medium, low)",
				Destination: &cmd.priority,
			},
			&cli.StringFlag{
				Name:        "due",
				Usage:       "due date (YYYY-MM-DD)",
				Destination: &cmd.due,
			},
			&cli.StringSliceFlag{
				Name:        "project",
				Usage:       "project id to link the item to (repeatable)",
				Destination: &cmd.projects,
			},
			cmd.fileInput.Flag("file", "f"),
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *AddCmd) buildRequest(c *cli.Command) (syncpkg.CreateRequest, error) {
	in := addInput{
		Task:     c.Args().First(),
		Owner:    cmd.owner,
		Status:   cmd.status,
		Priority: cmd.priority,
		DueDate:  cmd.due,
		Projects: cmd.projects,
	}

	if cmd.fileInput.IsSet() {
		var err error
		in, err = cmd.fileInput.Read()
		if err != nil {
			return syncpkg.CreateRequest{}, err
		}
	}

	if in.Task == "" {
		return syncpkg.CreateRequest{}, fmt.Errorf("usage: boardsync add <task>")
	}

	req := syncpkg.CreateRequest{
		Task:           in.Task,
		Owner:          in.Owner,
		Status:         action.ParseStatus(in.Status),
		Priority:       action.ParsePriority(in.Priority),
		LinkProjectIDs: in.Projects,
	}

	if in.DueDate != "" {
		due, err := time.Parse("2006-01-02", in.DueDate)
		if err != nil {
			return syncpkg.CreateRequest{}, fmt.Errorf("parse due date: %w", err)
		}
		req.DueDate = &due
	}

	return req, nil
}

func (cmd *AddCmd) run(ctx context.Context, c *cli.Command) error {
	req, err := cmd.buildRequest(c)
	if err != nil {
		return err
	}

	engine, cleanup, err := newEngine(ctx, cmd.flags, action.DefaultCriteria())
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := engine.Create(ctx, req); err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	engine.Wait()

	if msg := engine.Err(); msg != "" {
		return cli.Exit(msg, 1)
	}

	items := engine.Items()
	if len(items) > 0 {
		_, _ = fmt.Fprintf(c.Root().Writer, "created %s\n", items[len(items)-1].ID)
	}
	return nil
}
