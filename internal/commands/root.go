package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"propmanager/internal/gateway"
)

// BuildFunc assembles the App a command runs against.
type BuildFunc func(ctx context.Context) (*App, error)

type appKey struct{}

// NewRootCmd returns the propctl command tree. build runs once, before the
// selected subcommand.
func NewRootCmd(build BuildFunc) *cobra.Command {
	root := &cobra.Command{
		Use:           "propctl",
		Short:         "Property management dashboard",
		Long:          `Manage properties, tenants and payments against the property-management API and view the portfolio dashboard.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Runnable() || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			app, err := build(cmd.Context())
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, app))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app, ok := cmd.Context().Value(appKey{}).(*App); ok {
				return app.Close()
			}
			return nil
		},
	}

	root.AddCommand(
		LoginCmd(),
		RegisterCmd(),
		LogoutCmd(),
		WhoamiCmd(),
		StatsCmd(),
		PropertiesCmd(),
		TenantsCmd(),
		PaymentsCmd(),
		WatchCmd(),
		ExportCmd(),
	)
	return root
}

// Execute runs root and rewrites gateway failures into actionable messages.
func Execute(ctx context.Context, root *cobra.Command) error {
	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return nil
	case gateway.IsAuthExpired(err):
		return fmt.Errorf("session expired, run 'propctl login' again: %w", err)
	case gateway.IsTimeout(err):
		return fmt.Errorf("the server did not answer in time: %w", err)
	default:
		return err
	}
}

func appFrom(cmd *cobra.Command) *App {
	return cmd.Context().Value(appKey{}).(*App)
}
