package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/domain"
	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/payment"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, log *zap.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, log *zap.Logger, status int, code, message string) {
	respondJSON(w, log, status, ErrorResponse{Error: message, Code: code})
}

// respondDomainError maps the engine's error taxonomy onto HTTP statuses in
// one place.
func respondDomainError(w http.ResponseWriter, log *zap.Logger, err error) {
	var upstream *domain.UpstreamError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, log, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidIndex):
		respondError(w, log, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, domain.ErrCheckoutLocked):
		respondError(w, log, http.StatusConflict, "checkout_locked", err.Error())
	case errors.Is(err, domain.ErrEmptyCart):
		respondError(w, log, http.StatusConflict, "empty_cart", err.Error())
	case errors.Is(err, domain.ErrInsufficientStock):
		respondError(w, log, http.StatusConflict, "insufficient_stock", err.Error())
	case errors.Is(err, domain.ErrMissingPrice):
		respondError(w, log, http.StatusUnprocessableEntity, "missing_price", err.Error())
	case errors.Is(err, domain.ErrPaymentInsufficient):
		respondError(w, log, http.StatusPaymentRequired, "payment_insufficient", err.Error())
	case errors.Is(err, domain.ErrPaymentUnconfirmed):
		respondError(w, log, http.StatusPaymentRequired, "payment_unconfirmed", err.Error())
	case errors.Is(err, payment.ErrCardDeclined):
		respondError(w, log, http.StatusPaymentRequired, "card_declined", err.Error())
	case errors.Is(err, domain.ErrPaymentCancelled):
		respondError(w, log, http.StatusConflict, "payment_cancelled", err.Error())
	case errors.Is(err, domain.ErrSessionExpired):
		respondError(w, log, http.StatusGone, "session_expired", err.Error())
	case errors.As(err, &upstream):
		log.Error("upstream failure", zap.Error(err))
		respondError(w, log, http.StatusBadGateway, "upstream_error", err.Error())
	case errors.Is(err, domain.ErrConnection):
		log.Error("backend unreachable", zap.Error(err))
		respondError(w, log, http.StatusServiceUnavailable, "backend_unreachable", err.Error())
	default:
		log.Error("internal error", zap.Error(err))
		respondError(w, log, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
