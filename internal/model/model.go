package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID
	Email     string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Customer is the shopping profile of a user. Users without one are admins.
type Customer struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Product prices are whole currency units.
type Product struct {
	ID        uuid.UUID
	Name      string
	Code      string
	Price     int64
	Digital   bool
	Image     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Article is a storefront blog post. DateUp is the publication date shown to readers.
type Article struct {
	ID        uuid.UUID
	Name      string
	Image     string
	Content   string
	DateUp    time.Time
	CreatedAt time.Time
}

// Order is a customer's cart while Complete is false and a receipt afterwards.
type Order struct {
	ID          uuid.UUID
	CustomerID  uuid.UUID
	Complete    bool
	Items       []OrderItem
	CreatedAt   time.Time
	CompletedAt *time.Time
}

func (o *Order) CartItemCount() int {
	var n int
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

func (o *Order) CartTotal() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.LineTotal()
	}
	return total
}

// OrderItem IDs are ascending in insertion order; the lowest one survives a repair.
type OrderItem struct {
	ID        int64
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	Product   Product
	CreatedAt time.Time
}

func (i OrderItem) LineTotal() int64 {
	return int64(i.Quantity) * i.Product.Price
}

type ShippingAddress struct {
	ID         int64
	OrderID    uuid.UUID
	CustomerID uuid.UUID
	Name       string
	Address    string
	City       string
	State      string
	Mobile     string
	CreatedAt  time.Time
}

// NotificationMessage is the payload queued for the mail transport.
type NotificationMessage struct {
	ID        uuid.UUID `json:"id"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
}
