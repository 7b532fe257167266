package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the closed set of states an order moves through.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPaid      OrderStatus = "PAID"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// statusTransitions is the transition table. Statuses absent from a target
// list are rejected; DELIVERED and CANCELLED have no outbound transitions.
var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusPaid, StatusCancelled},
	StatusPaid:      {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered},
	StatusDelivered: {},
	StatusCancelled: {},
}

// ParseOrderStatus converts a status name to an OrderStatus, rejecting
// anything outside the named states.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled:
		return OrderStatus(s), nil
	}
	return "", NewDomainError(ErrCodeInvalidArgument, fmt.Sprintf("Unknown order status: %s", s))
}

// CanTransitionTo reports whether the transition table permits moving from
// the receiver to the target status.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no outbound transitions.
func (s OrderStatus) IsTerminal() bool {
	return len(statusTransitions[s]) == 0
}

// Payment method tags routed by the payment dispatcher.
type PaymentMethod string

const (
	PaymentMethodGateway PaymentMethod = "gateway"
	PaymentMethodMock    PaymentMethod = "mock"
)

// ShippingAddress is a value object copied in full onto the order at
// checkout. It has no lifecycle of its own.
type ShippingAddress struct {
	FullName     string `json:"fullName" db:"ship_full_name"`
	AddressLine1 string `json:"addressLine1" db:"ship_address_line1"`
	AddressLine2 string `json:"addressLine2,omitempty" db:"ship_address_line2"`
	City         string `json:"city" db:"ship_city"`
	State        string `json:"state" db:"ship_state"`
	PostalCode   string `json:"postalCode" db:"ship_postal_code"`
	Country      string `json:"country" db:"ship_country"`
	Phone        string `json:"phone" db:"ship_phone"`
}

// Validate checks required shipping fields; address line 2 is optional.
func (a *ShippingAddress) Validate() error {
	required := map[string]string{
		"fullName":     a.FullName,
		"addressLine1": a.AddressLine1,
		"city":         a.City,
		"state":        a.State,
		"postalCode":   a.PostalCode,
		"country":      a.Country,
		"phone":        a.Phone,
	}
	for field, value := range required {
		if value == "" {
			return NewDomainError(ErrCodeInvalidArgument, fmt.Sprintf("Shipping %s is required", field))
		}
	}
	return nil
}

// Order represents a customer order. It is created whole by the checkout
// flow and afterwards mutated only through status transitions.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          uuid.UUID       `json:"userId" db:"user_id"`
	Items           []OrderItem     `json:"items"`
	TotalCents      int64           `json:"totalCents" db:"total_cents"`
	Currency        string          `json:"currency" db:"currency"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	Status          OrderStatus     `json:"status" db:"status"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod" db:"payment_method"`
	PaymentRef      *string         `json:"paymentRef,omitempty" db:"payment_ref"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem is one line of an order. UnitPriceCents is captured at checkout
// and never changes, even if the catalogue price later does.
type OrderItem struct {
	ID             uuid.UUID `json:"-" db:"id"`
	OrderID        uuid.UUID `json:"-" db:"order_id"`
	ProductID      uuid.UUID `json:"productId" db:"product_id"`
	ProductName    string    `json:"productName" db:"product_name"`
	Quantity       int       `json:"quantity" db:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents" db:"unit_price_cents"`
	Size           string    `json:"size,omitempty" db:"size"`
	Color          string    `json:"color,omitempty" db:"color"`
}

// CartItem is a single entry in a checkout request.
type CartItem struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
	Size      string    `json:"size,omitempty"`
	Color     string    `json:"color,omitempty"`
}

// CheckoutRequest is the payload for creating an order.
type CheckoutRequest struct {
	Items         []CartItem      `json:"items"`
	Shipping      ShippingAddress `json:"shipping"`
	PaymentMethod PaymentMethod   `json:"paymentMethod,omitempty"`
}

// Validate checks the checkout payload before any store access.
func (r *CheckoutRequest) Validate() error {
	if len(r.Items) == 0 {
		return NewDomainError(ErrCodeInvalidArgument, "Checkout must contain at least one item")
	}
	for i, item := range r.Items {
		if item.ProductID == uuid.Nil {
			return NewDomainError(ErrCodeInvalidArgument, fmt.Sprintf("Item %d: product ID is required", i))
		}
		if item.Quantity <= 0 {
			return ErrInvalidQuantity
		}
	}
	if err := r.Shipping.Validate(); err != nil {
		return err
	}
	switch r.PaymentMethod {
	case "", PaymentMethodGateway, PaymentMethodMock:
	default:
		return NewDomainError(ErrCodeInvalidArgument, fmt.Sprintf("Unknown payment method: %s", r.PaymentMethod))
	}
	return nil
}

// UpdateStatusRequest is the admin payload for driving the state machine.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// Analytics is a read-only rollup over recent orders.
type Analytics struct {
	RevenueCents int64 `json:"revenueCents"`
	OrderCount   int64 `json:"orderCount"`
}

// OrderPage is a paged list of orders.
type OrderPage struct {
	Orders []Order `json:"orders"`
	Total  int64   `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}
