package logging

import (
	"context"
)

type debugKey struct{}

// EnableDebugMode returns a context for which CDebug lines are logged whatever the logger's
// level. name tags the request; it defaults to "debug".
func EnableDebugMode(ctx context.Context, name string) context.Context {
	if name == "" {
		name = "debug"
	}
	return context.WithValue(ctx, debugKey{}, name)
}

// IsDebugMode reports whether ctx came from EnableDebugMode.
func IsDebugMode(ctx context.Context) bool {
	return GetName(ctx) != ""
}

// GetName returns the name given to EnableDebugMode, or "" when debug mode is off.
func GetName(ctx context.Context) string {
	name, _ := ctx.Value(debugKey{}).(string)
	return name
}
