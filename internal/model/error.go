package model

import "fmt"

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeInvalidArgument   = "INVALID_ARGUMENT"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	ErrCodePaymentFailed     = "PAYMENT_FAILED"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeEmailTaken        = "EMAIL_TAKEN"
	ErrCodeSKUTaken          = "SKU_TAKEN"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// DomainError is a business-rule failure with a stable machine-readable code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrProductNotFound = NewDomainError(ErrCodeNotFound, "Product not found")
	ErrOrderNotFound   = NewDomainError(ErrCodeNotFound, "Order not found")
	ErrUserNotFound    = NewDomainError(ErrCodeNotFound, "User not found")
	ErrInvalidQuantity = NewDomainError(ErrCodeInvalidArgument, "Quantity must be greater than zero")
	ErrUnauthorised    = NewDomainError(ErrCodeUnauthorised, "Unauthorised access to order")
	ErrEmailTaken      = NewDomainError(ErrCodeEmailTaken, "Email is already registered")
	ErrSKUTaken        = NewDomainError(ErrCodeSKUTaken, "SKU already exists")
)

// StockPhase identifies which step of the checkout observed the shortfall.
// Validation reads the stock before the transaction opens; reservation is
// the atomic decrement inside it. A reservation failure means a concurrent
// checkout won the race after validation had already passed.
type StockPhase string

const (
	StockPhaseValidation  StockPhase = "validation"
	StockPhaseReservation StockPhase = "reservation"
)

// InsufficientStockError reports a stock shortfall for a single product.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
	Phase       StockPhase
}

func (e *InsufficientStockError) Error() string {
	if e.Phase == StockPhaseReservation {
		return fmt.Sprintf("insufficient stock for product %s at reservation (requested %d)", e.ProductID, e.Requested)
	}
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

// Code returns the stable error code shared by both phases.
func (e *InsufficientStockError) Code() string {
	return ErrCodeInsufficientStock
}

// PaymentError wraps a gateway failure. The order survives it as PENDING
// with no payment reference; only the payment step failed.
type PaymentError struct {
	OrderID string
	Err     error
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment processing failed for order %s: %v", e.OrderID, e.Err)
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}
