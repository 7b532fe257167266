// Seeds the database with an admin account and a few sample products for
// local development. Reads the same environment variables as the API server.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"attire-store/internal/auth"
	"attire-store/internal/config"
	"attire-store/internal/model"
	"attire-store/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close(ctx)

	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "changeme123"
	}
	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return err
	}

	_, err = conn.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO NOTHING
	`, uuid.New(), "Store Admin", "admin@attire-store.local", hash, model.RoleAdmin, time.Now())
	if err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	products := []struct {
		name       string
		sku        string
		priceCents int64
		sizes      []string
		colors     []string
		stock      int
	}{
		{"Classic Cotton Kurta", "KUR-001", 149900, []string{"S", "M", "L", "XL"}, []string{"white", "blue"}, 25},
		{"Silk Festive Saree", "SAR-001", 499900, []string{"FREE"}, []string{"red", "gold"}, 10},
		{"Linen Nehru Jacket", "JKT-001", 299900, []string{"M", "L"}, []string{"beige"}, 15},
	}

	now := time.Now()
	for _, p := range products {
		_, err := conn.Exec(ctx, `
			INSERT INTO products (id, name, slug, sku, description, price_cents, currency, sizes, colors, stock, active, images, created_at, updated_at)
			VALUES ($1, $2, $3, $4, '', $5, $6, $7, $8, $9, TRUE, '{}', $10, $10)
			ON CONFLICT (sku) DO NOTHING
		`, uuid.New(), p.name, service.GenerateSlug(p.name), p.sku, p.priceCents, cfg.Store.Currency, p.sizes, p.colors, p.stock, now)
		if err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.sku, err)
		}
	}

	fmt.Println("seed completed")
	return nil
}
