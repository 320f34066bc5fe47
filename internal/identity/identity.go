// Package identity resolves who is calling: nobody, an admin, or a customer.
package identity

import (
	"context"

	"github.com/google/uuid"
)

type Kind int

const (
	Anonymous Kind = iota
	Admin
	Customer
)

func (k Kind) String() string {
	switch k {
	case Admin:
		return "admin"
	case Customer:
		return "customer"
	default:
		return "anonymous"
	}
}

// Identity is resolved once per request. CustomerID is set only for Customer;
// SessionID is set for every authenticated caller.
type Identity struct {
	Kind       Kind
	UserID     uuid.UUID
	CustomerID uuid.UUID
	SessionID  string
}

func (id Identity) IsCustomer() bool { return id.Kind == Customer }

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the anonymous identity when none was attached.
func FromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(ctxKey{}).(Identity)
	return id
}
