// Package payment routes orders to their payment handler. Each payment
// method has exactly one handler; the dispatcher knows nothing about how a
// handler authorises.
package payment

import (
	"context"
	"fmt"

	"attire-store/internal/model"

	"github.com/rs/zerolog"
)

// Result is the outcome of a successful payment dispatch. Paid is true only
// for handlers that settle synchronously; gateway handlers return Paid false
// and an asynchronous confirmation is expected later.
type Result struct {
	Reference string
	Paid      bool
}

// Handler authorises payment for a single payment method.
type Handler interface {
	Authorize(ctx context.Context, order *model.Order) (Result, error)
}

// Dispatcher routes an order to the handler registered for its payment
// method.
type Dispatcher struct {
	handlers map[model.PaymentMethod]Handler
	logger   zerolog.Logger
}

// NewDispatcher creates a dispatcher over the given method handlers.
func NewDispatcher(handlers map[model.PaymentMethod]Handler, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: handlers,
		logger:   logger.With().Str("component", "payment-dispatcher").Logger(),
	}
}

// Dispatch authorises payment for the order.
func (d *Dispatcher) Dispatch(ctx context.Context, order *model.Order) (Result, error) {
	handler, ok := d.handlers[order.PaymentMethod]
	if !ok {
		return Result{}, model.NewDomainError(model.ErrCodeInvalidArgument,
			fmt.Sprintf("Unknown payment method: %s", order.PaymentMethod))
	}

	result, err := handler.Authorize(ctx, order)
	if err != nil {
		return Result{}, err
	}

	d.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("method", string(order.PaymentMethod)).
		Bool("paid", result.Paid).
		Msg("payment authorised")

	return result, nil
}
