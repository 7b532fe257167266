package service

import (
	"context"
	"mime/multipart"

	"attire-store/internal/model"

	"github.com/google/uuid"
)

// ProductService defines catalogue operations.
type ProductService interface {
	// List retrieves active products matching the filter.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetBySlug retrieves a single product by its URL slug.
	GetBySlug(ctx context.Context, slug string) (*model.Product, error)

	// Create creates a product with a generated slug and stores its images.
	Create(ctx context.Context, req *model.CreateProductRequest, images []*multipart.FileHeader) (*model.Product, error)

	// Update rewrites a product's mutable fields and appends any new images.
	Update(ctx context.Context, id uuid.UUID, req *model.CreateProductRequest, images []*multipart.FileHeader) (*model.Product, error)

	// Delete soft-deletes a product.
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderService defines the checkout flow and order management.
type OrderService interface {
	// Checkout converts a cart into a persisted order: validates the cart,
	// snapshots prices, atomically reserves stock, persists the order, then
	// dispatches payment.
	Checkout(ctx context.Context, userID uuid.UUID, req *model.CheckoutRequest) (*model.Order, error)

	// GetByID retrieves an order; the requesting user must own it.
	GetByID(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error)

	// ListByUser retrieves the user's orders, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) (*model.OrderPage, error)

	// ListAll retrieves all orders (admin).
	ListAll(ctx context.Context, limit, offset int) (*model.OrderPage, error)

	// UpdateStatus drives the order state machine (admin).
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*model.Order, error)

	// Analytics aggregates revenue and order counts over the last N days.
	Analytics(ctx context.Context, days int) (*model.Analytics, error)
}

// AuthService defines account registration and token issuance.
type AuthService interface {
	// Register creates an account and returns a signed token for it.
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)

	// Login verifies credentials and returns a signed token.
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)
}
