package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/boardsync/pkg/iojson"
)

type ConfigValidateCmd struct {
	flags *Flags

	// flags
	jsonOutput bool
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "boardsync config validate [--json]",
				Description: "Validates the configuration file, checking mode requirements, the backend URL, and timeout sanity.",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output validation errors as JSON",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

func (cmd *ConfigValidateCmd) run(ctx context.Context, c *cli.Command) error {
	err := cmd.flags.Config.ValidateDeep(cmd.flags.ConfigPath)
	if err == nil {
		if !cmd.jsonOutput {
			_, _ = fmt.Fprintln(c.Root().Writer, "Configuration is valid")
		}
		return nil
	}

	if cmd.jsonOutput {
		data := map[string]any{}
		var fieldErrs criterio.FieldErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				data[fe.Field] = fe.Err.Error()
			}
		}
		_ = iojson.WriteError("configuration is invalid", data)
		return cli.Exit("", 1)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, err.Error())
	return cli.Exit("", 1)
}
