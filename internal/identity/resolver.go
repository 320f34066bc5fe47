package identity

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/flicky/homeclick-store/internal/model"
)

// CustomerLookup finds the customer profile linked to a user, or nil.
type CustomerLookup interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Customer, error)
}

// UserLookup finds a user account by ID, or nil.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type Resolver struct {
	users     UserLookup
	customers CustomerLookup
}

func NewResolver(users UserLookup, customers CustomerLookup) *Resolver {
	return &Resolver{users: users, customers: customers}
}

// Resolve maps an authenticated user and session to Admin or Customer.
// A nil or unknown user ID resolves to Anonymous.
func (r *Resolver) Resolve(ctx context.Context, userID uuid.UUID, sessionID string) (Identity, error) {
	if userID == uuid.Nil {
		return Identity{Kind: Anonymous}, nil
	}
	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return Identity{}, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return Identity{Kind: Anonymous}, nil
	}
	customer, err := r.customers.GetByUserID(ctx, userID)
	if err != nil {
		return Identity{}, fmt.Errorf("lookup customer: %w", err)
	}
	if customer == nil {
		return Identity{Kind: Admin, UserID: userID, SessionID: sessionID}, nil
	}
	return Identity{Kind: Customer, UserID: userID, CustomerID: customer.ID, SessionID: sessionID}, nil
}
