package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"propmanager/internal/core"
)

func TenantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tenants",
		Aliases: []string{"tenant"},
		Short:   "List and manage tenants",
	}
	cmd.AddCommand(listTenantsCmd(), addTenantCmd(), removeTenantCmd())
	return cmd
}

func listTenantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tenants",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			if err := app.load(cmd.Context()); err != nil {
				return err
			}
			snap := app.Store.Snapshot()
			return printTenants(cmd.OutOrStdout(), snap.Tenants, snap.Properties)
		},
	}
}

func addTenantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Assign a tenant to a property",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			if err := app.requireLogin(); err != nil {
				return err
			}
			f := cmd.Flags()
			name, _ := f.GetString("name")
			email, _ := f.GetString("email")
			property, _ := f.GetString("property")
			startText, _ := f.GetString("lease-start")
			endText, _ := f.GetString("lease-end")
			avatar, _ := f.GetString("avatar")

			start, err := core.ParseDate(startText)
			if err != nil {
				return fmt.Errorf("invalid --lease-start: %w", err)
			}
			end, err := core.ParseDate(endText)
			if err != nil {
				return fmt.Errorf("invalid --lease-end: %w", err)
			}

			res, err := app.Coordinator.AddTenant(cmd.Context(), core.TenantInput{
				Name:       name,
				PropertyID: core.ID(property),
				LeaseStart: start,
				LeaseEnd:   end,
				Email:      email,
				Avatar:     avatar,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added tenant %s (%s) to property %s\n", res.Value.ID, res.Value.Name, res.Value.PropertyID)
			reportStale(cmd.ErrOrStderr(), res)
			return nil
		},
	}
	cmd.Flags().String("name", "", "Tenant name")
	cmd.Flags().String("email", "", "Tenant email")
	cmd.Flags().String("property", "", "Property id")
	cmd.Flags().String("lease-start", "", "Lease start, YYYY-MM-DD")
	cmd.Flags().String("lease-end", "", "Lease end, YYYY-MM-DD")
	cmd.Flags().String("avatar", "", "Avatar URL")
	for _, name := range []string{"name", "email", "property", "lease-start", "lease-end"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func removeTenantCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"delete"},
		Short:   "Remove a tenant",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			if err := app.requireLogin(); err != nil {
				return err
			}
			id, err := core.ParseID(args[0])
			if err != nil {
				return err
			}
			res, err := app.Coordinator.RemoveTenant(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed tenant %s\n", id)
			reportStale(cmd.ErrOrStderr(), res)
			return nil
		},
	}
}
