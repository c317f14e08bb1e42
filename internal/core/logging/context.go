package logging

import "context"

type contextKey string

const (
	modeKey      contextKey = "board_mode"
	projectIDKey contextKey = "project_id"
)

// WithMode adds the board mode to the context.
func WithMode(ctx context.Context, mode string) context.Context {
	return context.WithValue(ctx, modeKey, mode)
}

// WithProjectID adds a project ID to the context.
func WithProjectID(ctx context.Context, projectID string) context.Context {
	return context.WithValue(ctx, projectIDKey, projectID)
}

// GetMode retrieves the board mode from the context.
// Returns empty string if not present.
func GetMode(ctx context.Context) string {
	if mode, ok := ctx.Value(modeKey).(string); ok {
		return mode
	}
	return ""
}

// GetProjectID retrieves the project ID from the context.
// Returns empty string if not present.
func GetProjectID(ctx context.Context) string {
	if id, ok := ctx.Value(projectIDKey).(string); ok {
		return id
	}
	return ""
}
