package repository

import (
	"context"
	"fmt"
	"time"

	"attire-store/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

const orderColumns = `id, user_id, total_cents, currency, status, payment_method, payment_ref,
	ship_full_name, ship_address_line1, ship_address_line2, ship_city, ship_state,
	ship_postal_code, ship_country, ship_phone, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.TotalCents, &o.Currency, &o.Status,
		&o.PaymentMethod, &o.PaymentRef,
		&o.ShippingAddress.FullName, &o.ShippingAddress.AddressLine1,
		&o.ShippingAddress.AddressLine2, &o.ShippingAddress.City,
		&o.ShippingAddress.State, &o.ShippingAddress.PostalCode,
		&o.ShippingAddress.Country, &o.ShippingAddress.Phone,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, user_id, total_cents, currency, status, payment_method, payment_ref,
			ship_full_name, ship_address_line1, ship_address_line2, ship_city, ship_state,
			ship_postal_code, ship_country, ship_phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	a := order.ShippingAddress
	_, err := tx.Exec(ctx, query,
		order.ID, order.UserID, order.TotalCents, order.Currency,
		order.Status, order.PaymentMethod, order.PaymentRef,
		a.FullName, a.AddressLine1, a.AddressLine2, a.City, a.State,
		a.PostalCode, a.Country, a.Phone,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts the order's line items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, product_id, product_name, quantity, unit_price_cents, size, color)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.ID, item.OrderID, item.ProductID, item.ProductName,
			item.Quantity, item.UnitPriceCents, item.Size, item.Color)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_id", items[i].ProductID.String()).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// GetByID retrieves an order with its line items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	orderQuery := fmt.Sprintf("SELECT %s FROM orders WHERE id = $1", orderColumns)

	order, err := scanOrder(r.pool.QueryRow(ctx, orderQuery, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, product_name, quantity, unit_price_cents, size, color
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.UnitPriceCents, &item.Size, &item.Color)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

// ListByUser retrieves a user's orders, newest first.
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) (*model.OrderPage, error) {
	return r.listOrders(ctx, "WHERE user_id = $3", limit, offset, userID)
}

// ListAll retrieves all orders, newest first.
func (r *orderRepository) ListAll(ctx context.Context, limit, offset int) (*model.OrderPage, error) {
	return r.listOrders(ctx, "", limit, offset)
}

func (r *orderRepository) listOrders(ctx context.Context, where string, limit, offset int, extraArgs ...any) (*model.OrderPage, error) {
	countQuery := "SELECT COUNT(*) FROM orders " + where
	// The count query does not use the paging placeholders; renumber for it.
	if where != "" {
		countQuery = "SELECT COUNT(*) FROM orders WHERE user_id = $1"
	}

	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, extraArgs...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count orders")
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM orders %s ORDER BY created_at DESC LIMIT $1 OFFSET $2",
		orderColumns, where,
	)

	args := append([]any{limit, offset}, extraArgs...)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	for i := range orders {
		items, err := r.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return &model.OrderPage{
		Orders: orders,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

// UpdateStatus moves an order between statuses with a compare-and-swap
// UPDATE, so no reader ever observes a half-applied transition.
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) (bool, error) {
	query := `
		UPDATE orders
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
	`

	tag, err := r.pool.Exec(ctx, query, id, from, to)
	if err != nil {
		r.logger.Error().Err(err).
			Str("order_id", id.String()).
			Str("from", string(from)).
			Str("to", string(to)).
			Msg("failed to update order status")
		return false, fmt.Errorf("failed to update order status: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// SetPaymentResult records the outcome of a payment dispatch.
func (r *orderRepository) SetPaymentResult(ctx context.Context, id uuid.UUID, status model.OrderStatus, paymentRef string) error {
	query := `
		UPDATE orders
		SET status = $2, payment_ref = $3, updated_at = now()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, status, paymentRef)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to set payment result")
		return fmt.Errorf("failed to set payment result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

// RevenueSince sums totals of PAID orders created at or after the cutoff.
func (r *orderRepository) RevenueSince(ctx context.Context, since time.Time) (int64, error) {
	query := `
		SELECT COALESCE(SUM(total_cents), 0)
		FROM orders
		WHERE status = $1 AND created_at >= $2
	`

	var revenue int64
	if err := r.pool.QueryRow(ctx, query, model.StatusPaid, since).Scan(&revenue); err != nil {
		r.logger.Error().Err(err).Msg("failed to calculate revenue")
		return 0, fmt.Errorf("failed to calculate revenue: %w", err)
	}

	return revenue, nil
}

// CountSince counts all orders created at or after the cutoff.
func (r *orderRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM orders WHERE created_at >= $1`

	var count int64
	if err := r.pool.QueryRow(ctx, query, since).Scan(&count); err != nil {
		r.logger.Error().Err(err).Msg("failed to count orders")
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}

	return count, nil
}
