package memory

import "propmanager/internal/core"

// Seed loads the demo portfolio. Existing data is replaced; accounts are kept.
func (g *Gateway) Seed() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.properties = []core.Property{
		{
			ID: "1", Address: "Highland Manor, Unit 4B", UnitCount: 4, MonthlyRent: core.Dollars(3200),
			Status: core.Occupied, Type: core.Residential,
			ImageURL: "https://images.unsplash.com/photo-1600585154340-be6161a56a0c?auto=format&fit=crop&q=80&w=800",
		},
		{
			ID: "2", Address: "Oakwood Executive Suites", UnitCount: 1, MonthlyRent: core.Dollars(1850),
			Status: core.Vacant, Type: core.Commercial,
			ImageURL: "https://images.unsplash.com/photo-1486406146926-c627a92ad1ab?auto=format&fit=crop&q=80&w=800",
		},
		{
			ID: "3", Address: "Pinecrest Luxury Villa", UnitCount: 1, MonthlyRent: core.Dollars(5100),
			Status: core.Occupied, Type: core.Residential,
			ImageURL: "https://images.unsplash.com/photo-1613490493576-7fde63acd811?auto=format&fit=crop&q=80&w=800",
		},
		{
			ID: "4", Address: "The Brick Lofts #202", UnitCount: 2, MonthlyRent: core.Dollars(2400),
			Status: core.Vacant, Type: core.Residential,
			ImageURL: "https://images.unsplash.com/photo-1512917774080-9991f1c4c750?auto=format&fit=crop&q=80&w=800",
		},
	}
	g.tenants = []core.Tenant{
		{
			ID: "t1", Name: "John Doe", PropertyID: "1", Email: "john@example.com",
			LeaseStart: core.NewDate(2023, 1, 1), LeaseEnd: core.NewDate(2024, 1, 1),
			Avatar: "https://i.pravatar.cc/150?u=t1",
		},
		{
			ID: "t2", Name: "Jane Smith", PropertyID: "3", Email: "jane@example.com",
			LeaseStart: core.NewDate(2023, 6, 15), LeaseEnd: core.NewDate(2024, 6, 15),
			Avatar: "https://i.pravatar.cc/150?u=t2",
		},
	}
	g.payments = []core.Payment{
		{ID: "p1", PropertyID: "1", TenantID: "t1", Amount: core.Dollars(3200), Date: core.NewDate(2024, 3, 1), Status: core.Paid},
		{ID: "p2", PropertyID: "3", TenantID: "t2", Amount: core.Dollars(5100), Date: core.NewDate(2024, 3, 5), Status: core.Paid},
		{ID: "p3", PropertyID: "1", TenantID: "t1", Amount: core.Dollars(3200), Date: core.NewDate(2024, 4, 1), Status: core.Pending},
	}
}

// NewSeeded returns a gateway holding the demo portfolio.
func NewSeeded(opts Options) *Gateway {
	g := New(opts)
	g.Seed()
	return g
}
