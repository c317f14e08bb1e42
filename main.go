package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/boardsync/internal/commands"
	"github.com/colonyops/boardsync/internal/core/config"
	"github.com/colonyops/boardsync/internal/core/logging"
	"github.com/colonyops/boardsync/internal/core/styles"
	"github.com/colonyops/boardsync/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var logCloser func()

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "boardsync",
		Usage:     "Synchronize and manage a multi-mode task board",
		UsageText: "boardsync [global options] command [command options]",
		Description: `Boardsync keeps a local view of action items in sync with the task
backend. The board operates in one of three modes: the global pool,
a single project's subset, or a read-only meeting snapshot.

Run 'boardsync' with no arguments to show the board.
Run 'boardsync ls --json' for machine-readable output.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("BOARDSYNC_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file",
				Sources:     cli.EnvVars("BOARDSYNC_LOG_FILE"),
				Value:       commands.DefaultLogFile(),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("BOARDSYNC_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "theme",
				Usage:       "color theme (" + strings.Join(styles.ThemeNames(), ", ") + ")",
				Sources:     cli.EnvVars("BOARDSYNC_THEME"),
				Value:       styles.DefaultTheme,
				Destination: &flags.Theme,
			},
			&cli.StringFlag{
				Name:        "mode",
				Usage:       "board mode override (global, project, meeting)",
				Sources:     cli.EnvVars("BOARDSYNC_MODE"),
				Destination: &flags.Mode,
			},
			&cli.StringFlag{
				Name:        "project",
				Usage:       "project id for project mode",
				Destination: &flags.ProjectID,
			},
			&cli.StringFlag{
				Name:        "transcription",
				Usage:       "transcription id for meeting mode",
				Destination: &flags.TranscriptionID,
			},
			&cli.StringFlag{
				Name:        "snapshot",
				Usage:       "path to the meeting snapshot JSON file",
				Destination: &flags.SnapshotFile,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, closer, err := logutils.New(flags.LogLevel, flags.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger.Hook(logging.ContextHook{})
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			palette, ok := styles.GetPalette(flags.Theme)
			if !ok {
				return ctx, fmt.Errorf("unknown theme %q (available: %s)", flags.Theme, strings.Join(styles.ThemeNames(), ", "))
			}
			styles.SetTheme(palette)

			board := flags.BoardConfig()
			ctx = logging.WithMode(ctx, board.Mode)
			if board.ProjectID != "" {
				ctx = logging.WithProjectID(ctx, board.ProjectID)
			}

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	boardCmd := commands.NewBoardCmd(flags)

	app = boardCmd.Register(app)
	app = commands.NewLsCmd(flags).Register(app)
	app = commands.NewAddCmd(flags).Register(app)
	app = commands.NewSetStatusCmd(flags).Register(app)
	app = commands.NewRmCmd(flags).Register(app)
	app = commands.NewLinkCmd(flags).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)

	// Show the board when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'boardsync --help' for usage", c.Args().First())
		}
		return boardCmd.Run(ctx, c)
	}

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
