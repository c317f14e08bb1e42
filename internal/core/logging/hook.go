package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook extracts board_mode and project_id from context and adds them to log events.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == context.Background() || ctx == nil {
		return
	}

	if mode := GetMode(ctx); mode != "" {
		e.Str("board_mode", mode)
	}

	if projectID := GetProjectID(ctx); projectID != "" {
		e.Str("project_id", projectID)
	}
}
