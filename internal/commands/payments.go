package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"propmanager/internal/core"
)

func PaymentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "payments",
		Aliases: []string{"payment"},
		Short:   "List and record payments",
	}
	cmd.AddCommand(listPaymentsCmd(), addPaymentCmd())
	return cmd
}

func listPaymentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List payments, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			if err := app.load(cmd.Context()); err != nil {
				return err
			}
			payments := core.SortPaymentsByDate(app.Store.Payments())
			if pending, _ := cmd.Flags().GetBool("pending"); pending {
				filtered := payments[:0]
				for _, p := range payments {
					if p.Status == core.Pending {
						filtered = append(filtered, p)
					}
				}
				payments = filtered
			}
			return printPayments(cmd.OutOrStdout(), payments)
		},
	}
	cmd.Flags().Bool("pending", false, "Only show pending payments")
	return cmd
}

func addPaymentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a payment",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			if err := app.requireLogin(); err != nil {
				return err
			}
			f := cmd.Flags()
			property, _ := f.GetString("property")
			tenant, _ := f.GetString("tenant")
			amountText, _ := f.GetString("amount")
			dateText, _ := f.GetString("date")
			status, _ := f.GetString("status")

			cents, err := core.ParseDecimalToCents(amountText)
			if err != nil {
				return fmt.Errorf("invalid --amount %q: %w", amountText, err)
			}
			date := core.Date{}
			if dateText == "" {
				now := app.Now()
				date = core.NewDate(now.Year(), int(now.Month()), now.Day())
			} else if date, err = core.ParseDate(dateText); err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}

			res, err := app.Coordinator.AddPayment(cmd.Context(), core.PaymentInput{
				PropertyID: core.ID(property),
				TenantID:   core.ID(tenant),
				Amount:     core.Money{Cents: cents},
				Date:       date,
				Status:     core.PaymentStatus(status),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded payment %s of $%s (%s)\n", res.Value.ID, res.Value.Amount, res.Value.Status)
			reportStale(cmd.ErrOrStderr(), res)
			return nil
		},
	}
	cmd.Flags().String("property", "", "Property id")
	cmd.Flags().String("tenant", "", "Tenant id")
	cmd.Flags().String("amount", "", "Amount, e.g. 1200 or 1200.50")
	cmd.Flags().String("date", "", "Payment date, YYYY-MM-DD (default today)")
	cmd.Flags().String("status", string(core.Paid), "paid or pending")
	for _, name := range []string{"property", "tenant", "amount"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
