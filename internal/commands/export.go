package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"propmanager/internal/log"
	"propmanager/internal/report"
)

func ExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the portfolio report as CSV or to Google Sheets",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			ctx := cmd.Context()
			format, _ := cmd.Flags().GetString("format")
			format = strings.ToLower(format)
			if format != "csv" && format != "sheets" {
				return fmt.Errorf("unsupported format %q: must be csv or sheets", format)
			}

			if err := app.load(ctx); err != nil {
				return err
			}
			snap := app.Store.Snapshot()
			r := report.Build(snap.Properties, snap.Tenants, snap.Payments, app.Now())
			logger := app.Logger.WithComponent(log.ComponentReport)

			if format == "sheets" {
				spreadsheet, _ := cmd.Flags().GetString("spreadsheet")
				if spreadsheet == "" {
					spreadsheet = app.Config.GoogleSpreadsheetID
				}
				sheet, _ := cmd.Flags().GetString("sheet")
				if sheet == "" {
					sheet = app.Config.GoogleReportSheet
				}
				exp, err := report.NewSheetsExporter(ctx, spreadsheet, sheet)
				if err != nil {
					return err
				}
				rng, err := exp.Export(ctx, r)
				if err != nil {
					return err
				}
				logger.Info("Report exported", log.FieldOperation, log.OpExport, "range", rng)
				fmt.Fprintf(cmd.OutOrStdout(), "Exported report to %s\n", rng)
				return nil
			}

			path, _ := cmd.Flags().GetString("output")
			if path == "" || path == "-" {
				return report.WriteCSV(cmd.OutOrStdout(), r)
			}
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create %s: %w", path, err)
			}
			if err := report.WriteCSV(f, r); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			logger.Info("Report exported", log.FieldOperation, log.OpExport, "path", path)
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().String("format", "csv", "Output format: csv or sheets")
	cmd.Flags().StringP("output", "o", "", "CSV file to write (default stdout)")
	cmd.Flags().String("spreadsheet", "", "Spreadsheet ID (default GOOGLE_SPREADSHEET_ID)")
	cmd.Flags().String("sheet", "", "Sheet name (default GOOGLE_REPORT_SHEET)")
	return cmd
}
