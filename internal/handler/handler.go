package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"attire-store/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// The status line is already out; nothing useful left to do.
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: model.ErrCodeInternalError, Message: message})
}

// writeDomainError maps a service error to an HTTP response. Unknown errors
// collapse to a generic 500 so internals never leak to clients.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var stockErr *model.InsufficientStockError
	if errors.As(err, &stockErr) {
		logger.Warn().
			Str("product_id", stockErr.ProductID).
			Str("phase", string(stockErr.Phase)).
			Msg("insufficient stock")
		writeJSON(w, http.StatusConflict, model.ErrorResponse{
			Error:   stockErr.Code(),
			Message: stockErr.Error(),
		})
		return
	}

	var payErr *model.PaymentError
	if errors.As(err, &payErr) {
		logger.Error().Err(payErr).Str("order_id", payErr.OrderID).Msg("payment failed")
		writeJSON(w, http.StatusBadGateway, model.ErrorResponse{
			Error:   model.ErrCodePaymentFailed,
			Message: "Payment processing failed; the order is pending payment",
		})
		return
	}

	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		status := http.StatusInternalServerError
		switch domainErr.Code {
		case model.ErrCodeNotFound:
			status = http.StatusNotFound
		case model.ErrCodeInvalidArgument, model.ErrCodeInvalidJSON:
			status = http.StatusBadRequest
		case model.ErrCodeUnauthorised:
			status = http.StatusUnauthorized
		case model.ErrCodeForbidden:
			status = http.StatusForbidden
		case model.ErrCodeEmailTaken, model.ErrCodeSKUTaken:
			status = http.StatusConflict
		}
		logger.Warn().Str("code", domainErr.Code).Int("status", status).Msg(domainErr.Message)
		writeJSON(w, status, model.ErrorResponse{
			Error:   domainErr.Code,
			Message: domainErr.Message,
		})
		return
	}

	logger.Error().Err(err).Msg("unhandled service error")
	writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
		Error:   model.ErrCodeInternalError,
		Message: "internal server error",
	})
}
