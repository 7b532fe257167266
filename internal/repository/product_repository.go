package repository

import (
	"context"
	"fmt"
	"strings"

	"attire-store/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

const productColumns = `id, name, slug, sku, description, price_cents, currency, sizes, colors, stock, active, images, created_at, updated_at`

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.SKU, &p.Description,
		&p.PriceCents, &p.Currency, &p.Sizes, &p.Colors,
		&p.Stock, &p.Active, &p.Images, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List retrieves active products matching the filter.
func (r *productRepository) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	var (
		conditions = []string{"active = TRUE"}
		args       []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		p := arg(pattern)
		conditions = append(conditions, fmt.Sprintf("(name ILIKE %s OR description ILIKE %s)", p, p))
	}
	if len(filter.Sizes) > 0 {
		conditions = append(conditions, fmt.Sprintf("sizes && %s", arg(filter.Sizes)))
	}
	if len(filter.Colors) > 0 {
		conditions = append(conditions, fmt.Sprintf("colors && %s", arg(filter.Colors)))
	}
	if filter.MinPriceCents != nil {
		conditions = append(conditions, fmt.Sprintf("price_cents >= %s", arg(*filter.MinPriceCents)))
	}
	if filter.MaxPriceCents != nil {
		conditions = append(conditions, fmt.Sprintf("price_cents <= %s", arg(*filter.MaxPriceCents)))
	}

	// Sort expressions are chosen from a fixed set, never from user input.
	orderBy := "created_at DESC"
	switch filter.Sort {
	case model.SortPriceAsc:
		orderBy = "price_cents ASC"
	case model.SortPriceDesc:
		orderBy = "price_cents DESC"
	case model.SortNameAsc:
		orderBy = "name ASC"
	case model.SortNameDesc:
		orderBy = "name DESC"
	}

	query := fmt.Sprintf(
		"SELECT %s FROM products WHERE %s ORDER BY %s LIMIT %s OFFSET %s",
		productColumns,
		strings.Join(conditions, " AND "),
		orderBy,
		arg(filter.Limit),
		arg(filter.Offset),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products WHERE id = $1", productColumns)

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return p, nil
}

// GetBySlug retrieves a single product by its slug.
func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products WHERE slug = $1", productColumns)

	p, err := scanProduct(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("slug", slug).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("slug", slug).Msg("failed to query product by slug")
		return nil, fmt.Errorf("failed to query product by slug: %w", err)
	}

	return p, nil
}

// Create inserts a new product.
func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	query := `
		INSERT INTO products (id, name, slug, sku, description, price_cents, currency, sizes, colors, stock, active, images, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.pool.Exec(ctx, query,
		product.ID, product.Name, product.Slug, product.SKU, product.Description,
		product.PriceCents, product.Currency, product.Sizes, product.Colors,
		product.Stock, product.Active, product.Images, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	r.logger.Debug().Str("product_id", product.ID.String()).Str("sku", product.SKU).Msg("product created")
	return nil
}

// Update rewrites the mutable fields of an existing product. The slug and
// SKU are fixed at creation.
func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, price_cents = $4, sizes = $5,
			colors = $6, stock = $7, images = $8, updated_at = $9
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		product.ID, product.Name, product.Description, product.PriceCents,
		product.Sizes, product.Colors, product.Stock, product.Images, product.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

// Deactivate soft-deletes a product.
func (r *productRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE products SET active = FALSE, updated_at = now() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to deactivate product")
		return fmt.Errorf("failed to deactivate product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	r.logger.Debug().Str("product_id", id.String()).Msg("product deactivated")
	return nil
}

// ExistsBySKU reports whether a product with the given SKU exists.
func (r *productRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE sku = $1)`, sku).Scan(&exists)
	if err != nil {
		r.logger.Error().Err(err).Str("sku", sku).Msg("failed to check SKU")
		return false, fmt.Errorf("failed to check SKU: %w", err)
	}
	return exists, nil
}

// DecrementStock atomically subtracts qty from the product's stock. The
// stock >= qty guard makes decrement-and-check a single statement, so two
// orders racing for the last unit serialise inside the database and exactly
// one of them succeeds.
func (r *productRepository) DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, qty int) error {
	query := `
		UPDATE products
		SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2
	`

	tag, err := tx.Exec(ctx, query, id, qty)
	if err != nil {
		r.logger.Error().Err(err).
			Str("product_id", id.String()).
			Int("quantity", qty).
			Msg("failed to decrement stock")
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Warn().
			Str("product_id", id.String()).
			Int("quantity", qty).
			Msg("stock reservation rejected")
		return ErrInsufficientStock
	}

	return nil
}
