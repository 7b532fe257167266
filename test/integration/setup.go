package integration

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"attire-store/internal/auth"
	"attire-store/internal/handler"
	"attire-store/internal/model"
	"attire-store/internal/payment"
	"attire-store/internal/repository"
	"attire-store/internal/router"
	"attire-store/internal/service"
	"attire-store/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestEnv is a full application instance backed by a throwaway PostgreSQL
// container, exposed through an httptest server.
type TestEnv struct {
	Pool     *pgxpool.Pool
	Server   *httptest.Server
	Tokens   *auth.TokenProvider
	Products repository.ProductRepository
	Orders   repository.OrderRepository
	Users    repository.UserRepository
	OrderSvc service.OrderService
}

// failingGateway stands in for an unreachable payment gateway.
type failingGateway struct{}

func (failingGateway) Authorize(ctx context.Context, order *model.Order) (payment.Result, error) {
	return payment.Result{}, errors.New("gateway unreachable")
}

// SetupEnv starts a PostgreSQL container, applies the schema, and wires the
// whole stack behind an httptest server. Everything is torn down via
// t.Cleanup.
func SetupEnv(t *testing.T) *TestEnv {
	t.Helper()

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	createSchema(t, pool)

	logger := zerolog.Nop()

	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)

	tokens := auth.NewTokenProvider("integration-test-secret", time.Hour)

	dispatcher := payment.NewDispatcher(map[model.PaymentMethod]payment.Handler{
		model.PaymentMethodMock:    payment.NewMockHandler(logger),
		model.PaymentMethodGateway: failingGateway{},
	}, logger)

	images := storage.NewLocalStore(t.TempDir(), logger)

	productSvc := service.NewProductService(productRepo, images, "INR", logger)
	orderSvc := service.NewOrderService(orderRepo, productRepo, userRepo, dispatcher, "INR", logger)
	authSvc := service.NewAuthService(userRepo, tokens, logger)

	h := router.New(router.Config{
		Products: handler.NewProductHandler(productSvc, logger),
		Orders:   handler.NewOrderHandler(orderSvc, logger),
		Auth:     handler.NewAuthHandler(authSvc, logger),
		Admin:    handler.NewAdminHandler(productSvc, orderSvc, logger),
		Tokens:   tokens,
		Logger:   logger,
	})

	server := httptest.NewServer(h)

	t.Cleanup(func() {
		server.Close()
		pool.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestEnv{
		Pool:     pool,
		Server:   server,
		Tokens:   tokens,
		Products: productRepo,
		Orders:   orderRepo,
		Users:    userRepo,
		OrderSvc: orderSvc,
	}
}

// createSchema applies the production DDL from scripts/schema.sql.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'customer',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS products (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			slug VARCHAR(255) NOT NULL UNIQUE,
			sku VARCHAR(100) NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			price_cents BIGINT NOT NULL CHECK (price_cents > 0),
			currency CHAR(3) NOT NULL,
			sizes TEXT[] NOT NULL DEFAULT '{}',
			colors TEXT[] NOT NULL DEFAULT '{}',
			stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
			active BOOLEAN NOT NULL DEFAULT TRUE,
			images TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id),
			total_cents BIGINT NOT NULL,
			currency CHAR(3) NOT NULL,
			status VARCHAR(20) NOT NULL,
			payment_method VARCHAR(20) NOT NULL,
			payment_ref VARCHAR(255),
			ship_full_name VARCHAR(255) NOT NULL,
			ship_address_line1 VARCHAR(255) NOT NULL,
			ship_address_line2 VARCHAR(255) NOT NULL DEFAULT '',
			ship_city VARCHAR(100) NOT NULL,
			ship_state VARCHAR(100) NOT NULL,
			ship_postal_code VARCHAR(20) NOT NULL,
			ship_country VARCHAR(100) NOT NULL,
			ship_phone VARCHAR(30) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS order_items (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_id UUID NOT NULL REFERENCES products(id),
			product_name VARCHAR(255) NOT NULL,
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			unit_price_cents BIGINT NOT NULL,
			size VARCHAR(50) NOT NULL DEFAULT '',
			color VARCHAR(50) NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id);
		CREATE INDEX IF NOT EXISTS idx_orders_status_created_at ON orders(status, created_at);
		CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
		CREATE INDEX IF NOT EXISTS idx_order_items_product_id ON order_items(product_id);
	`

	_, err := pool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// SeedProduct inserts a product directly through the repository and returns it.
func SeedProduct(t *testing.T, env *TestEnv, name string, priceCents int64, stock int) *model.Product {
	t.Helper()

	id := uuid.New()
	now := time.Now()
	product := &model.Product{
		ID:          id,
		Name:        name,
		Slug:        fmt.Sprintf("p-%s", id),
		SKU:         fmt.Sprintf("SKU-%s", id),
		Description: "seeded for testing",
		PriceCents:  priceCents,
		Currency:    "INR",
		Sizes:       []string{"S", "M", "L"},
		Colors:      []string{"blue"},
		Stock:       stock,
		Active:      true,
		Images:      []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := env.Products.Create(context.Background(), product); err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return product
}

// SeedUser inserts a user with a known password and returns the user and a
// valid bearer token.
func SeedUser(t *testing.T, env *TestEnv, role model.Role) (*model.User, string) {
	t.Helper()

	hash, err := auth.HashPassword("password123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	id := uuid.New()
	user := &model.User{
		ID:           id,
		Name:         "Test User",
		Email:        fmt.Sprintf("%s@example.com", id),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	if err := env.Users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	token, err := env.Tokens.Generate(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return user, token
}
