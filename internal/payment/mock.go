package payment

import (
	"context"
	"fmt"
	"strings"

	"attire-store/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// mockHandler approves every order immediately with a locally generated
// reference. Used for development and for flows without a real gateway.
type mockHandler struct {
	logger zerolog.Logger
}

// NewMockHandler creates an auto-approving payment handler.
func NewMockHandler(logger zerolog.Logger) Handler {
	return &mockHandler{
		logger: logger.With().Str("component", "mock-gateway").Logger(),
	}
}

// Authorize marks the order paid with a unique MOCK_ reference.
func (h *mockHandler) Authorize(_ context.Context, order *model.Order) (Result, error) {
	ref := fmt.Sprintf("MOCK_%s", strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")))

	h.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("reference", ref).
		Msg("mock payment auto-approved")

	return Result{Reference: ref, Paid: true}, nil
}
