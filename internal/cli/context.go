// Package cli provides the command-line interface for the afind application.
package cli

import (
	"context"

	"github.com/apartsfinder/afind/internal/app"
	"github.com/spf13/cobra"
)

// ctxKey is used for storing the application in cobra command contexts
type ctxKey struct{}

// SetApp stores the Application in the command's context
func SetApp(cmd *cobra.Command, a *app.Application) {
	if cmd == nil {
		return
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, ctxKey{}, a))
}

// GetAppFromCmd returns the Application stored on cmd or its nearest parent
func GetAppFromCmd(cmd *cobra.Command) *app.Application {
	for c := cmd; c != nil; c = c.Parent() {
		if ctx := c.Context(); ctx != nil {
			if a, ok := ctx.Value(ctxKey{}).(*app.Application); ok && a != nil {
				return a
			}
		}
	}
	return nil
}
