// Package notify formats customer notifications and hands them to the mail
// pipeline. Nothing in here ever fails a caller's request.
package notify

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const currency = "VNĐ"

type Line struct {
	Name      string
	Quantity  int
	UnitPrice int64
}

// OrderSummary is everything an order confirmation shows.
type OrderSummary struct {
	OrderID        uuid.UUID
	CustomerName   string
	Lines          []Line
	Subtotal       int64
	DiscountCode   string
	DiscountAmount int64
	FinalTotal     int64
}

const OrderConfirmationSubject = "Order confirmed successfully."

func FormatOrderConfirmation(sum OrderSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s, You have successfully placed an order at HomeClick!\n\n", sum.CustomerName)
	b.WriteString("Order Details:\n")
	for _, l := range sum.Lines {
		fmt.Fprintf(&b, "%s: %d x %d %s\n", l.Name, l.Quantity, l.UnitPrice, currency)
	}
	code := sum.DiscountCode
	if code == "" {
		code = "N/A"
	}
	fmt.Fprintf(&b, "\nSubtotal: %d %s\n", sum.Subtotal, currency)
	fmt.Fprintf(&b, "Discount (%s): -%d %s\n", code, sum.DiscountAmount, currency)
	fmt.Fprintf(&b, "Total after discount: %d %s\n", sum.FinalTotal, currency)
	b.WriteString("\nWe hope you enjoy our service!\n")
	return b.String()
}

const WelcomeSubject = "Welcome to HomeClick"

func FormatWelcome(name string) string {
	return fmt.Sprintf("Hi %s, welcome to our website!\n"+
		"You are registered successfully. Now you are a member of our website.\n"+
		"We hope you enjoy our service!\n", name)
}
