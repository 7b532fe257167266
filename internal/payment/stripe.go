package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"attire-store/internal/model"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// StripeConfig holds the gateway credentials and call bounds.
type StripeConfig struct {
	APIKey  string
	Timeout time.Duration
}

// stripeHandler authorises payment by creating a Stripe payment intent for
// the order's total. The intent is confirmed asynchronously, so the order
// stays PENDING after a successful dispatch.
type stripeHandler struct {
	api     *client.API
	timeout time.Duration
	logger  zerolog.Logger
}

// NewStripeHandler creates a gateway-backed payment handler.
func NewStripeHandler(cfg StripeConfig, logger zerolog.Logger) Handler {
	api := &client.API{}
	api.Init(cfg.APIKey, nil)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &stripeHandler{
		api:     api,
		timeout: timeout,
		logger:  logger.With().Str("component", "stripe-gateway").Logger(),
	}
}

// Authorize creates a payment intent for the order's total and currency,
// tagged with the order id. The call is bounded by its own timeout, distinct
// from any database deadline.
func (h *stripeHandler) Authorize(ctx context.Context, order *model.Order) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(order.TotalCents),
		Currency:    stripe.String(strings.ToLower(order.Currency)),
		Description: stripe.String(fmt.Sprintf("Order %s", order.ID)),
	}
	params.Context = ctx
	params.AddMetadata("order_id", order.ID.String())

	intent, err := h.api.PaymentIntents.New(params)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int64("amount_cents", order.TotalCents).
			Msg("payment intent creation failed")
		return Result{}, fmt.Errorf("failed to create payment intent: %w", err)
	}

	h.logger.Info().
		Str("order_id", order.ID.String()).
		Str("payment_intent", intent.ID).
		Msg("payment intent created")

	return Result{Reference: intent.ID, Paid: false}, nil
}
