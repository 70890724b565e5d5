// Package memory is an in-process gateway used by the mock backend and
// for offline runs of the CLI.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"propmanager/internal/core"
	"propmanager/internal/gateway"
)

// Ensure interface conformance
var _ gateway.Gateway = (*Gateway)(nil)

// Options configures a Gateway. Zero values pick usable defaults.
type Options struct {
	Policy    core.StatusPolicy
	JWTSecret string
	TokenTTL  time.Duration
	// Now is used for token timestamps.
	Now func() time.Time
}

type Gateway struct {
	mu         sync.RWMutex
	properties []core.Property
	tenants    []core.Tenant
	payments   []core.Payment
	accounts   map[string]account

	policy core.StatusPolicy
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// New returns an empty gateway.
func New(opts Options) *Gateway {
	g := &Gateway{
		accounts: map[string]account{},
		policy:   opts.Policy,
		secret:   []byte(opts.JWTSecret),
		ttl:      opts.TokenTTL,
		now:      opts.Now,
	}
	if len(g.secret) == 0 {
		g.secret = []byte("propmanager-dev-secret")
	}
	if g.ttl <= 0 {
		g.ttl = 24 * time.Hour
	}
	if g.now == nil {
		g.now = time.Now
	}
	return g
}

func newID() core.ID {
	return core.ID(strings.ReplaceAll(uuid.NewString(), "-", "")[:9])
}

func (g *Gateway) ListProperties(_ context.Context) ([]core.Property, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]core.Property(nil), g.properties...), nil
}

func (g *Gateway) ListTenants(_ context.Context) ([]core.Tenant, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]core.Tenant(nil), g.tenants...), nil
}

func (g *Gateway) ListPayments(_ context.Context) ([]core.Payment, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]core.Payment(nil), g.payments...), nil
}

// CreateProperty stores a property. Missing status and type default to
// vacant and Residential, as the reference backend does.
func (g *Gateway) CreateProperty(_ context.Context, in core.PropertyInput) (core.Property, error) {
	if in.Status == "" {
		in.Status = core.Vacant
	}
	if in.Type == "" {
		in.Type = core.Residential
	}
	if err := in.Validate(); err != nil {
		return core.Property{}, err
	}
	p := core.Property{
		ID:          newID(),
		Address:     strings.TrimSpace(in.Address),
		UnitCount:   in.UnitCount,
		MonthlyRent: in.MonthlyRent,
		Status:      in.Status,
		Type:        in.Type,
		ImageURL:    in.ImageURL,
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.properties = append(g.properties, p)
	return p, nil
}

func (g *Gateway) UpdateProperty(_ context.Context, id core.ID, u core.PropertyUpdate) (core.Property, error) {
	if err := u.Validate(); err != nil {
		return core.Property{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.propertyIndex(id)
	if i < 0 {
		return core.Property{}, gateway.NotFound("property", id.String())
	}
	g.properties[i] = u.Apply(g.properties[i])
	return g.properties[i], nil
}

// DeleteProperty removes the property only; tenants and payments that
// reference it are left alone.
func (g *Gateway) DeleteProperty(_ context.Context, id core.ID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.propertyIndex(id)
	if i < 0 {
		return gateway.NotFound("property", id.String())
	}
	g.properties = append(g.properties[:i], g.properties[i+1:]...)
	return nil
}

// CreateTenant stores the tenant and marks its property occupied.
func (g *Gateway) CreateTenant(_ context.Context, in core.TenantInput) (core.Tenant, error) {
	if err := in.Validate(); err != nil {
		return core.Tenant{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	pi := g.propertyIndex(in.PropertyID)
	if pi < 0 {
		return core.Tenant{}, gateway.NotFound("property", in.PropertyID.String())
	}
	t := core.Tenant{
		ID:         newID(),
		Name:       strings.TrimSpace(in.Name),
		PropertyID: in.PropertyID,
		LeaseStart: in.LeaseStart,
		LeaseEnd:   in.LeaseEnd,
		Email:      strings.TrimSpace(in.Email),
		Avatar:     in.Avatar,
	}
	g.tenants = append(g.tenants, t)
	g.properties[pi] = g.policy.OnTenantAssigned(g.properties[pi])
	return t, nil
}

// DeleteTenant removes the tenant and lets the status policy decide what
// happens to its property.
func (g *Gateway) DeleteTenant(_ context.Context, id core.ID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	ti := -1
	for i, t := range g.tenants {
		if t.ID == id {
			ti = i
			break
		}
	}
	if ti < 0 {
		return gateway.NotFound("tenant", id.String())
	}
	propertyID := g.tenants[ti].PropertyID
	g.tenants = append(g.tenants[:ti], g.tenants[ti+1:]...)

	if pi := g.propertyIndex(propertyID); pi >= 0 {
		remaining := 0
		for _, t := range g.tenants {
			if t.PropertyID == propertyID {
				remaining++
			}
		}
		g.properties[pi] = g.policy.OnTenantRemoved(g.properties[pi], remaining)
	}
	return nil
}

// CreatePayment stores a payment. A missing status defaults to paid.
func (g *Gateway) CreatePayment(_ context.Context, in core.PaymentInput) (core.Payment, error) {
	if in.Status == "" {
		in.Status = core.Paid
	}
	if err := in.Validate(); err != nil {
		return core.Payment{}, err
	}
	p := core.Payment{
		ID:         newID(),
		PropertyID: in.PropertyID,
		TenantID:   in.TenantID,
		Amount:     in.Amount,
		Date:       in.Date,
		Status:     in.Status,
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.payments = append(g.payments, p)
	return p, nil
}

// caller holds g.mu
func (g *Gateway) propertyIndex(id core.ID) int {
	for i, p := range g.properties {
		if p.ID == id {
			return i
		}
	}
	return -1
}
