// Command docgen generates CLI reference documentation from the boardsync
// command definitions. Output is written to docs/cli-reference.md.
package main

import (
	"fmt"
	"os"

	docs "github.com/urfave/cli-docs/v3"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/boardsync/internal/commands"
)

func main() {
	flags := &commands.Flags{}

	root := &cli.Command{
		Name:      "boardsync",
		Usage:     "Synchronize and manage a multi-mode task board",
		UsageText: "boardsync [global options] command [command options]",
		Description: `Boardsync keeps a local view of action items in sync with the task
backend. The board operates in one of three modes: the global pool,
a single project's subset, or a read-only meeting snapshot.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error, fatal, panic)",
				Sources: cli.EnvVars("BOARDSYNC_LOG_LEVEL"),
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "path to log file",
				Sources: cli.EnvVars("BOARDSYNC_LOG_FILE"),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
				Sources: cli.EnvVars("BOARDSYNC_CONFIG"),
				Value:   commands.DefaultConfigPath(),
			},
			&cli.StringFlag{
				Name:    "mode",
				Usage:   "board mode override (global, project, meeting)",
				Sources: cli.EnvVars("BOARDSYNC_MODE"),
			},
		},
	}

	root = commands.NewBoardCmd(flags).Register(root)
	root = commands.NewLsCmd(flags).Register(root)
	root = commands.NewAddCmd(flags).Register(root)
	root = commands.NewSetStatusCmd(flags).Register(root)
	root = commands.NewRmCmd(flags).Register(root)
	root = commands.NewLinkCmd(flags).Register(root)
	root = commands.NewConfigValidateCmd(flags).Register(root)

	md, err := docs.ToMarkdown(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error generating docs: %v\n", err)
		os.Exit(1)
	}

	outPath := "docs/cli-reference.md"
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	if err := os.WriteFile(outPath, []byte(md), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", outPath, err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s\n", outPath)
}
