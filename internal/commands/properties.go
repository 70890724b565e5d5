package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"propmanager/internal/core"
)

func PropertiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "properties",
		Aliases: []string{"property", "props"},
		Short:   "List and manage properties",
	}
	cmd.AddCommand(
		listPropertiesCmd(),
		addPropertyCmd(),
		updatePropertyCmd(),
		deletePropertyCmd(),
		togglePropertyCmd(),
	)
	return cmd
}

func listPropertiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List properties, optionally filtered",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			if err := app.load(cmd.Context()); err != nil {
				return err
			}
			search, _ := cmd.Flags().GetString("search")
			status, _ := cmd.Flags().GetString("status")
			props := core.FilterProperties(app.Store.Properties(), core.PropertyFilter{Search: search, Status: status})
			return printProperties(cmd.OutOrStdout(), props)
		},
	}
	cmd.Flags().String("search", "", "Match addresses containing this text")
	cmd.Flags().String("status", "all", "Filter by status: all, occupied or vacant")
	return cmd
}

func addPropertyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a property",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			if err := app.requireLogin(); err != nil {
				return err
			}
			f := cmd.Flags()
			address, _ := f.GetString("address")
			units, _ := f.GetInt("units")
			rentText, _ := f.GetString("rent")
			status, _ := f.GetString("status")
			kind, _ := f.GetString("type")
			image, _ := f.GetString("image")

			rent, err := core.ParseRent(rentText)
			if err != nil {
				return fmt.Errorf("invalid --rent %q: %w", rentText, err)
			}
			res, err := app.Coordinator.AddProperty(cmd.Context(), core.PropertyInput{
				Address:     address,
				UnitCount:   units,
				MonthlyRent: rent,
				Status:      core.PropertyStatus(status),
				Type:        core.PropertyType(kind),
				ImageURL:    image,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added property %s (%s)\n", res.Value.ID, res.Value.Address)
			reportStale(cmd.ErrOrStderr(), res)
			return nil
		},
	}
	cmd.Flags().String("address", "", "Street address")
	cmd.Flags().Int("units", 1, "Number of units")
	cmd.Flags().String("rent", "0", "Monthly rent, e.g. 1500 or 1500.50")
	cmd.Flags().String("status", string(core.Vacant), "occupied or vacant")
	cmd.Flags().String("type", string(core.Residential), "Residential, Commercial or Industrial")
	cmd.Flags().String("image", "", "Image URL")
	_ = cmd.MarkFlagRequired("address")
	return cmd
}

func updatePropertyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			if err := app.requireLogin(); err != nil {
				return err
			}
			id, err := core.ParseID(args[0])
			if err != nil {
				return err
			}

			f := cmd.Flags()
			var u core.PropertyUpdate
			if f.Changed("address") {
				v, _ := f.GetString("address")
				u.Address = &v
			}
			if f.Changed("units") {
				v, _ := f.GetInt("units")
				u.UnitCount = &v
			}
			if f.Changed("rent") {
				text, _ := f.GetString("rent")
				v, err := core.ParseRent(text)
				if err != nil {
					return fmt.Errorf("invalid --rent %q: %w", text, err)
				}
				u.MonthlyRent = &v
			}
			if f.Changed("status") {
				v, _ := f.GetString("status")
				s := core.PropertyStatus(v)
				u.Status = &s
			}
			if f.Changed("type") {
				v, _ := f.GetString("type")
				t := core.PropertyType(v)
				u.Type = &t
			}
			if f.Changed("image") {
				v, _ := f.GetString("image")
				u.ImageURL = &v
			}

			res, err := app.Coordinator.UpdateProperty(cmd.Context(), id, u)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated property %s\n", res.Value.ID)
			reportStale(cmd.ErrOrStderr(), res)
			return nil
		},
	}
	cmd.Flags().String("address", "", "Street address")
	cmd.Flags().Int("units", 0, "Number of units")
	cmd.Flags().String("rent", "", "Monthly rent")
	cmd.Flags().String("status", "", "occupied or vacant")
	cmd.Flags().String("type", "", "Residential, Commercial or Industrial")
	cmd.Flags().String("image", "", "Image URL")
	return cmd
}

func deletePropertyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			if err := app.requireLogin(); err != nil {
				return err
			}
			id, err := core.ParseID(args[0])
			if err != nil {
				return err
			}
			res, err := app.Coordinator.DeleteProperty(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted property %s\n", id)
			reportStale(cmd.ErrOrStderr(), res)
			return nil
		},
	}
}

func togglePropertyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a property between occupied and vacant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			if err := app.load(cmd.Context()); err != nil {
				return err
			}
			id, err := core.ParseID(args[0])
			if err != nil {
				return err
			}
			var target *core.Property
			for _, p := range app.Store.Properties() {
				if p.ID == id {
					target = &p
					break
				}
			}
			if target == nil {
				return fmt.Errorf("property %s not found", id)
			}

			res, err := app.Coordinator.ToggleStatus(cmd.Context(), *target)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Property %s is now %s\n", id, res.Value.Status)
			reportStale(cmd.ErrOrStderr(), res)
			return nil
		},
	}
}
