package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"attire-store/internal/model"
	"attire-store/internal/payment"
	"attire-store/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	dispatcher  *payment.Dispatcher
	currency    string
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	dispatcher *payment.Dispatcher,
	currency string,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		dispatcher:  dispatcher,
		currency:    currency,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// Checkout converts a cart into a persisted order.
//
// The sequence is: validate the cart line by line (fail-fast, no side
// effects), assemble the order with prices snapshotted from the catalogue,
// then reserve stock and persist the order inside a single transaction.
// A reservation shortfall on any line rolls back the whole transaction, so
// no order row and no partial decrement survive. Payment dispatch happens
// after commit: a gateway failure leaves the order PENDING with no payment
// reference rather than undoing the reservation.
func (s *orderService) Checkout(ctx context.Context, userID uuid.UUID, req *model.CheckoutRequest) (*model.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}

	order, err := s.assembleOrder(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	if err := s.reserveAndPersist(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", userID.String()).
		Int64("total_cents", order.TotalCents).
		Int("item_count", len(order.Items)).
		Msg("order created")

	if err := s.dispatchPayment(ctx, order); err != nil {
		// The order row is kept as PENDING; reconciliation of unpaid
		// stock-reserved orders happens out of band.
		return order, err
	}

	return order, nil
}

// assembleOrder validates each cart entry against the catalogue and builds
// the immutable line-item snapshot. The first failing line aborts the whole
// checkout. Totals use integer arithmetic only.
func (s *orderService) assembleOrder(ctx context.Context, userID uuid.UUID, req *model.CheckoutRequest) (*model.Order, error) {
	method := req.PaymentMethod
	if method == "" {
		method = model.PaymentMethodGateway
	}

	now := time.Now()
	order := &model.Order{
		ID:              uuid.New(),
		UserID:          userID,
		Currency:        s.currency,
		ShippingAddress: req.Shipping,
		Status:          model.StatusPending,
		PaymentMethod:   method,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var total int64
	for _, item := range req.Items {
		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
		if product == nil || !product.Active {
			s.logger.Warn().Str("product_id", item.ProductID.String()).Msg("cart references unknown product")
			return nil, model.ErrProductNotFound
		}

		if item.Quantity > product.Stock {
			s.logger.Warn().
				Str("product_id", product.ID.String()).
				Int("requested", item.Quantity).
				Int("available", product.Stock).
				Msg("insufficient stock at validation")
			return nil, &model.InsufficientStockError{
				ProductID:   product.ID.String(),
				ProductName: product.Name,
				Requested:   item.Quantity,
				Available:   product.Stock,
				Phase:       model.StockPhaseValidation,
			}
		}

		order.Items = append(order.Items, model.OrderItem{
			ID:             uuid.New(),
			OrderID:        order.ID,
			ProductID:      product.ID,
			ProductName:    product.Name,
			Quantity:       item.Quantity,
			UnitPriceCents: product.PriceCents,
			Size:           item.Size,
			Color:          item.Color,
		})
		total += product.PriceCents * int64(item.Quantity)
	}

	order.TotalCents = total
	return order, nil
}

// reserveAndPersist decrements stock for every line and inserts the order,
// all inside one transaction. Any failure rolls the whole unit back.
func (s *orderService) reserveAndPersist(ctx context.Context, order *model.Order) (err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	for _, item := range order.Items {
		if err = s.productRepo.DecrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			if errors.Is(err, repository.ErrInsufficientStock) {
				s.logger.Warn().
					Str("order_id", order.ID.String()).
					Str("product_id", item.ProductID.String()).
					Msg("stock consumed by concurrent checkout")
				err = &model.InsufficientStockError{
					ProductID:   item.ProductID.String(),
					ProductName: item.ProductName,
					Requested:   item.Quantity,
					Phase:       model.StockPhaseReservation,
				}
				return err
			}
			return fmt.Errorf("failed to reserve stock: %w", err)
		}
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, order.Items); err != nil {
		return fmt.Errorf("failed to create order items: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// dispatchPayment routes the order to its payment handler and records the
// result. Dispatch failures surface to the caller but never discard the order.
func (s *orderService) dispatchPayment(ctx context.Context, order *model.Order) error {
	result, err := s.dispatcher.Dispatch(ctx, order)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Str("payment_method", string(order.PaymentMethod)).
			Msg("payment dispatch failed")
		return &model.PaymentError{OrderID: order.ID.String(), Err: err}
	}

	status := model.StatusPending
	if result.Paid {
		status = model.StatusPaid
	}

	if err := s.orderRepo.SetPaymentResult(ctx, order.ID, status, result.Reference); err != nil {
		return fmt.Errorf("failed to record payment result: %w", err)
	}

	order.Status = status
	order.PaymentRef = &result.Reference
	order.UpdatedAt = time.Now()

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("status", string(status)).
		Str("payment_ref", result.Reference).
		Msg("payment dispatched")

	return nil
}

// GetByID retrieves an order; the requesting user must own it.
func (s *orderService) GetByID(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if order.UserID != userID {
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Str("user_id", userID.String()).
			Msg("order access denied")
		return nil, model.ErrUnauthorised
	}

	return order, nil
}

// ListByUser retrieves the user's orders, newest first.
func (s *orderService) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) (*model.OrderPage, error) {
	limit, offset = clampPaging(limit, offset)

	page, err := s.orderRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to list user orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return page, nil
}

// ListAll retrieves all orders (admin).
func (s *orderService) ListAll(ctx context.Context, limit, offset int) (*model.OrderPage, error) {
	limit, offset = clampPaging(limit, offset)

	page, err := s.orderRepo.ListAll(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return page, nil
}

// UpdateStatus drives the order state machine. Transitions outside the
// table are rejected, including any transition out of a terminal state.
func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*model.Order, error) {
	target, err := model.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if !order.Status.CanTransitionTo(target) {
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Str("from", string(order.Status)).
			Str("to", string(target)).
			Msg("illegal status transition")
		return nil, model.NewDomainError(model.ErrCodeInvalidArgument,
			fmt.Sprintf("Cannot transition order from %s to %s", order.Status, target))
	}

	updated, err := s.orderRepo.UpdateStatus(ctx, orderID, order.Status, target)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if !updated {
		// Lost a race with another transition; the caller should re-read.
		return nil, model.NewDomainError(model.ErrCodeInvalidArgument,
			fmt.Sprintf("Order status changed concurrently, expected %s", order.Status))
	}

	order.Status = target
	order.UpdatedAt = time.Now()

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("status", string(target)).
		Msg("order status updated")

	return order, nil
}

// Analytics aggregates revenue and order counts over the last N days.
// Empty windows report zeros, never an error.
func (s *orderService) Analytics(ctx context.Context, days int) (*model.Analytics, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	revenue, err := s.orderRepo.RevenueSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate analytics: %w", err)
	}

	count, err := s.orderRepo.CountSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate analytics: %w", err)
	}

	return &model.Analytics{
		RevenueCents: revenue,
		OrderCount:   count,
	}, nil
}

func clampPaging(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
