package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func StatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the portfolio summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			if err := app.load(cmd.Context()); err != nil {
				return err
			}
			stats := app.Store.Stats()

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Stats         any `json:"stats"`
					OccupancyRate int `json:"occupancyRate"`
				}{stats, stats.OccupancyRate()})
			}
			return printStats(cmd.OutOrStdout(), stats)
		},
	}
	cmd.Flags().Bool("json", false, "Print JSON instead of a table")
	return cmd
}
