// Package session keeps the ephemeral, per-login state of the storefront:
// the selected discount and the summary of the last completed checkout.
package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNoSession = errors.New("no session")

// Discount is the promo code currently selected in a session.
type Discount struct {
	Code   string `json:"code"`
	Amount int64  `json:"amount"`
}

// Summary is written once when a checkout completes.
type Summary struct {
	OrderID        uuid.UUID `json:"order_id"`
	Subtotal       int64     `json:"subtotal"`
	DiscountCode   string    `json:"discount_code"`
	DiscountAmount int64     `json:"discount_amount"`
	FinalTotal     int64     `json:"final_total"`
}

type Store interface {
	// GetDiscount returns the zero Discount when nothing is selected.
	GetDiscount(ctx context.Context, sessionID string) (Discount, error)
	SetDiscount(ctx context.Context, sessionID string, d Discount) error
	ClearDiscount(ctx context.Context, sessionID string) error
	SaveSummary(ctx context.Context, sessionID string, s Summary) error
	// LoadSummary returns nil when no summary is stored. With consume set the
	// summary is removed in the same round trip.
	LoadSummary(ctx context.Context, sessionID string, consume bool) (*Summary, error)
	// Clear drops all state of a session.
	Clear(ctx context.Context, sessionID string) error
}
