package logging

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component creates a new logger with a component identifier.
// Uses the "cmp" key for consistency with zerolog conventions.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}

// ComponentFor is Component plus the board scope carried by the context:
// board_mode and project_id are attached as fields when present, so every
// line from the component identifies which board it was working against.
func ComponentFor(ctx context.Context, name string) zerolog.Logger {
	logCtx := log.With().Str("cmp", name)
	if mode := GetMode(ctx); mode != "" {
		logCtx = logCtx.Str("board_mode", mode)
	}
	if id := GetProjectID(ctx); id != "" {
		logCtx = logCtx.Str("project_id", id)
	}
	return logCtx.Logger()
}
