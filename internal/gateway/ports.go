package gateway

import (
	"context"

	"propmanager/internal/core"
)

// Ports for the remote data source.
type (
	PropertyReader interface {
		ListProperties(ctx context.Context) ([]core.Property, error)
	}

	PropertyWriter interface {
		CreateProperty(ctx context.Context, in core.PropertyInput) (core.Property, error)
		// UpdateProperty applies a partial update and returns the stored property.
		UpdateProperty(ctx context.Context, id core.ID, u core.PropertyUpdate) (core.Property, error)
		DeleteProperty(ctx context.Context, id core.ID) error
	}

	TenantReader interface {
		ListTenants(ctx context.Context) ([]core.Tenant, error)
	}

	TenantWriter interface {
		CreateTenant(ctx context.Context, in core.TenantInput) (core.Tenant, error)
		DeleteTenant(ctx context.Context, id core.ID) error
	}

	PaymentReader interface {
		ListPayments(ctx context.Context) ([]core.Payment, error)
	}

	PaymentWriter interface {
		CreatePayment(ctx context.Context, in core.PaymentInput) (core.Payment, error)
	}

	// Authenticator exchanges credentials for a bearer token.
	Authenticator interface {
		Login(ctx context.Context, email, password string) (AuthResponse, error)
		Register(ctx context.Context, email, password, name string) (AuthResponse, error)
	}

	// Reader is everything the entity store fetches on refresh.
	Reader interface {
		PropertyReader
		TenantReader
		PaymentReader
	}

	// Writer is everything the mutation coordinator sends.
	Writer interface {
		PropertyWriter
		TenantWriter
		PaymentWriter
	}

	Gateway interface {
		Reader
		Writer
		Authenticator
	}
)

// AuthResponse is the body returned by login and register.
type AuthResponse struct {
	Token string    `json:"token"`
	User  core.User `json:"user"`
}
