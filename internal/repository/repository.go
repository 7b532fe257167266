package repository

import (
	"context"
	"errors"
	"time"

	"attire-store/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrInsufficientStock is returned by DecrementStock when the conditional
// update matches no row because the remaining stock is below the requested
// quantity.
var ErrInsufficientStock = errors.New("insufficient stock")

// ProductRepository defines the interface for catalogue data access.
type ProductRepository interface {
	// List retrieves active products matching the filter.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetBySlug retrieves a single product by its slug. Returns nil when absent.
	GetBySlug(ctx context.Context, slug string) (*model.Product, error)

	// Create inserts a new product.
	Create(ctx context.Context, product *model.Product) error

	// Update rewrites the mutable fields of an existing product.
	Update(ctx context.Context, product *model.Product) error

	// Deactivate soft-deletes a product by clearing its active flag.
	Deactivate(ctx context.Context, id uuid.UUID) error

	// ExistsBySKU reports whether a product with the given SKU exists.
	ExistsBySKU(ctx context.Context, sku string) (bool, error)

	// DecrementStock atomically subtracts qty from the product's stock within
	// the provided transaction. It is a single conditional UPDATE guarded by
	// stock >= qty; a plain read-then-write would race. Returns
	// ErrInsufficientStock when the guard rejects the decrement.
	DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, qty int) error
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts the order's line items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order with its line items. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListByUser retrieves a user's orders, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) (*model.OrderPage, error)

	// ListAll retrieves all orders, newest first.
	ListAll(ctx context.Context, limit, offset int) (*model.OrderPage, error)

	// UpdateStatus moves an order from one status to another as a single
	// compare-and-swap UPDATE. Returns false when the order was not in the
	// expected from status.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) (bool, error)

	// SetPaymentResult records the outcome of a payment dispatch.
	SetPaymentResult(ctx context.Context, id uuid.UUID, status model.OrderStatus, paymentRef string) error

	// RevenueSince sums totals of PAID orders created at or after the cutoff.
	// An empty window yields zero.
	RevenueSince(ctx context.Context, since time.Time) (int64, error)

	// CountSince counts all orders created at or after the cutoff.
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

// UserRepository defines the interface for account data access.
type UserRepository interface {
	// Create inserts a new user.
	Create(ctx context.Context, user *model.User) error

	// GetByID retrieves a user by ID. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// GetByEmail retrieves a user by email. Returns nil when absent.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// ExistsByEmail reports whether an account with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
