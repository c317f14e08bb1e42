package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/boardsync/internal/core/action"
)

// StatusCompleter returns a ShellCompleteFunc that suggests the canonical
// status vocabulary as positional completions. Set this as the ShellComplete
// field on any cli.Command that accepts a status argument.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func StatusCompleter() cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		w := cmd.Root().Writer
		for _, s := range []action.Status{
			action.StatusPending,
			action.StatusInProgress,
			action.StatusCompleted,
		} {
			_, _ = fmt.Fprintln(w, s)
		}
	}
}
