package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"propmanager/internal/core"
	"propmanager/internal/services"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printStats(w io.Writer, s core.DashboardStats) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "Total properties\t%d\n", s.TotalProperties)
	fmt.Fprintf(tw, "Occupied\t%d\n", s.OccupiedProperties)
	fmt.Fprintf(tw, "Vacant\t%d\n", s.VacantProperties)
	fmt.Fprintf(tw, "Occupancy rate\t%d%%\n", s.OccupancyRate())
	fmt.Fprintf(tw, "Monthly revenue\t$%s\n", s.TotalMonthlyRevenue)
	fmt.Fprintf(tw, "Pending payments\t%d\n", s.PendingPayments)
	return tw.Flush()
}

func printProperties(w io.Writer, props []core.Property) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tADDRESS\tTYPE\tUNITS\tRENT\tSTATUS")
	for _, p := range props {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t$%s\t%s\n", p.ID, p.Address, p.Type, p.UnitCount, p.MonthlyRent, p.Status)
	}
	return tw.Flush()
}

func printTenants(w io.Writer, tenants []core.Tenant, props []core.Property) error {
	addresses := make(map[core.ID]string, len(props))
	for _, p := range props {
		addresses[p.ID] = p.Address
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPROPERTY\tLEASE")
	for _, t := range tenants {
		property := addresses[t.PropertyID]
		if property == "" {
			property = t.PropertyID.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s to %s\n", t.ID, t.Name, t.Email, property, t.LeaseStart, t.LeaseEnd)
	}
	return tw.Flush()
}

func printPayments(w io.Writer, payments []core.Payment) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tDATE\tPROPERTY\tTENANT\tAMOUNT\tSTATUS")
	for _, p := range payments {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t$%s\t%s\n", p.ID, p.Date, p.PropertyID, p.TenantID, p.Amount, p.Status)
	}
	return tw.Flush()
}

// reportStale tells the user a write landed but the local view could not
// be reloaded.
func reportStale[T any](w io.Writer, res services.Result[T]) {
	if res.Stale {
		fmt.Fprintf(w, "warning: change saved, but reloading data failed: %v\n", res.RefreshErr)
	}
}
