package core

import "math"

// DashboardStats is the portfolio summary derived from the current snapshot.
// It is never stored; recompute it whenever properties or payments change.
type DashboardStats struct {
	TotalProperties     int   `json:"totalProperties"`
	OccupiedProperties  int   `json:"occupiedProperties"`
	VacantProperties    int   `json:"vacantProperties"`
	TotalMonthlyRevenue Money `json:"totalMonthlyRevenue"`
	PendingPayments     int   `json:"pendingPayments"`
}

// ComputeStats reduces the collections into summary statistics.
// Only occupied properties contribute to revenue. The result depends on
// nothing but the inputs, and input order is irrelevant.
func ComputeStats(properties []Property, payments []Payment) DashboardStats {
	stats := DashboardStats{TotalProperties: len(properties)}
	for _, p := range properties {
		switch p.Status {
		case Occupied:
			stats.OccupiedProperties++
			stats.TotalMonthlyRevenue = stats.TotalMonthlyRevenue.Add(p.MonthlyRent)
		case Vacant:
			stats.VacantProperties++
		}
	}
	for _, p := range payments {
		if p.Status == Pending {
			stats.PendingPayments++
		}
	}
	return stats
}

// OccupancyRate returns the occupied share as a rounded percentage,
// or 0 for an empty portfolio.
func (s DashboardStats) OccupancyRate() int {
	if s.TotalProperties <= 0 {
		return 0
	}
	return int(math.Round(float64(s.OccupiedProperties) / float64(s.TotalProperties) * 100))
}
