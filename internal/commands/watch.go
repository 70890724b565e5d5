package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"propmanager/internal/gateway"
	"propmanager/internal/log"
	"propmanager/internal/services"
	"propmanager/internal/worker"
)

func WatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the dashboard on screen, refreshing on a timer and on remote changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			if err := app.requireLogin(); err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			interval, _ := cmd.Flags().GetDuration("interval")
			if interval <= 0 {
				interval = app.Config.RefreshInterval
			}

			updates, unsubscribe := app.Store.Subscribe()
			defer unsubscribe()

			if err := app.Store.Refresh(ctx); err != nil {
				if isFatal(err) {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "initial load failed, retrying every %s: %v\n", interval, err)
			}

			refresher := services.NewAutoRefresher(app.Store, interval)
			if err := refresher.Start(ctx); err != nil {
				return err
			}
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
				defer cancel()
				_ = refresher.Stop(stopCtx)
			}()

			if app.Events != nil {
				w := worker.NewRefreshWorker(app.Store, app.Origin)
				go func() {
					if err := w.Run(ctx, app.Events); err != nil && !errors.Is(err, context.Canceled) {
						app.Logger.WithComponent(log.ComponentWorker).Error("Change event consumer stopped", log.FieldError, err)
					}
				}()
			}

			// An expired session cannot recover by refreshing again.
			check := time.NewTicker(interval)
			defer check.Stop()

			var shown uint64

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-check.C:
					if err := app.Store.Status().LastErr; isFatal(err) {
						return err
					}
				case <-updates:
					// Notices can be dropped or outrun by newer snapshots, so
					// render whatever is current if it has not been shown yet.
					snap := app.Store.Snapshot()
					if snap.Generation <= shown {
						continue
					}
					shown = snap.Generation
					fmt.Fprintf(out, "\nDashboard  (refreshed %s)\n", snap.RefreshedAt.Local().Format("15:04:05"))
					if err := printStats(out, app.Store.Stats()); err != nil {
						return err
					}
				}
			}
		},
	}
	cmd.Flags().Duration("interval", 0, "Refresh interval (default REFRESH_INTERVAL)")
	return cmd
}

func isFatal(err error) bool {
	return gateway.IsAuthExpired(err)
}
