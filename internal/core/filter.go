package core

import (
	"sort"
	"strings"
)

// PropertyFilter narrows a property list the way the properties view does.
type PropertyFilter struct {
	Search string
	// Status is "all" (or empty) for no status filter.
	Status string
}

// FilterProperties returns the properties matching f, preserving order.
func FilterProperties(properties []Property, f PropertyFilter) []Property {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	status := strings.ToLower(strings.TrimSpace(f.Status))
	out := make([]Property, 0, len(properties))
	for _, p := range properties {
		if search != "" && !strings.Contains(strings.ToLower(p.Address), search) {
			continue
		}
		if status != "" && status != "all" && string(p.Status) != status {
			continue
		}
		out = append(out, p)
	}
	return out
}

// SortPaymentsByDate returns a copy of payments ordered newest first.
func SortPaymentsByDate(payments []Payment) []Payment {
	out := append([]Payment(nil), payments...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out
}
