// Package report renders the dashboard as a portfolio report.
package report

import (
	"fmt"
	"time"

	"propmanager/internal/core"
)

// Report is a point-in-time export of one snapshot.
type Report struct {
	GeneratedAt time.Time
	Stats       core.DashboardStats
	Properties  []core.Property
	Tenants     []core.Tenant
	Payments    []core.Payment
}

// Build derives the report from one consistent set of collections.
func Build(properties []core.Property, tenants []core.Tenant, payments []core.Payment, at time.Time) Report {
	return Report{
		GeneratedAt: at.UTC(),
		Stats:       core.ComputeStats(properties, payments),
		Properties:  properties,
		Tenants:     tenants,
		Payments:    core.SortPaymentsByDate(payments),
	}
}

// Rows lays the report out as a table: a summary block, then properties,
// then payments, separated by blank rows.
func (r Report) Rows() [][]string {
	rows := [][]string{
		{"Portfolio report", r.GeneratedAt.Format(time.RFC3339)},
		{},
		{"Total properties", fmt.Sprint(r.Stats.TotalProperties)},
		{"Occupied", fmt.Sprint(r.Stats.OccupiedProperties)},
		{"Vacant", fmt.Sprint(r.Stats.VacantProperties)},
		{"Occupancy rate", fmt.Sprintf("%d%%", r.Stats.OccupancyRate())},
		{"Monthly revenue", r.Stats.TotalMonthlyRevenue.String()},
		{"Pending payments", fmt.Sprint(r.Stats.PendingPayments)},
		{},
		{"ID", "Address", "Type", "Units", "Monthly rent", "Status", "Tenants"},
	}

	tenantCount := map[core.ID]int{}
	for _, t := range r.Tenants {
		tenantCount[t.PropertyID]++
	}
	for _, p := range r.Properties {
		rows = append(rows, []string{
			p.ID.String(), p.Address, string(p.Type), fmt.Sprint(p.UnitCount),
			p.MonthlyRent.String(), string(p.Status), fmt.Sprint(tenantCount[p.ID]),
		})
	}

	rows = append(rows, []string{}, []string{"Payment", "Date", "Property", "Tenant", "Amount", "Status"})
	for _, p := range r.Payments {
		rows = append(rows, []string{
			p.ID.String(), p.Date.String(), p.PropertyID.String(), p.TenantID.String(),
			p.Amount.String(), string(p.Status),
		})
	}
	return rows
}
