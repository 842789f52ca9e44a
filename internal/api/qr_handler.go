package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/domain"
	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/session"
)

// QRHandler serves the QR session surface: creation and status for the
// terminal side, and the payer-facing pay link a customer's phone opens.
type QRHandler struct {
	registry session.Registry
	timeout  time.Duration
	currency string
	ttl      time.Duration
	log      *zap.Logger
}

func NewQRHandler(registry session.Registry, timeout time.Duration, currency string, ttl time.Duration, log *zap.Logger) *QRHandler {
	return &QRHandler{
		registry: registry,
		timeout:  timeout,
		currency: currency,
		ttl:      ttl,
		log:      log,
	}
}

type CreateSessionRequestDTO struct {
	Total    *float64 `json:"total"`
	Currency string   `json:"currency"`
}

// POST /qr/create
func (h *QRHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CreateSessionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Total == nil || *req.Total <= 0 {
		respondError(w, h.log, http.StatusBadRequest, "invalid_total", "total must be a positive number")
		return
	}
	currency := req.Currency
	if currency == "" {
		currency = h.currency
	}

	sess, err := h.registry.Create(ctx, domain.Round2(*req.Total), currency, h.ttl)
	if err != nil {
		respondDomainError(w, h.log, err)
		return
	}
	respondJSON(w, h.log, http.StatusOK, sess)
}

// GET /qr/status/{sessionId}
func (h *QRHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess, err := h.registry.Get(ctx, chi.URLParam(r, "sessionId"))
	if err != nil {
		respondDomainError(w, h.log, err)
		return
	}
	respondJSON(w, h.log, http.StatusOK, sess)
}

// GET /qr/pay/{sessionId}
//
// Simulated payer-facing endpoint: opening the link marks the session paid
// unless it already expired. Responds with a small HTML page for the phone
// browser.
func (h *QRHandler) Pay(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id := chi.URLParam(r, "sessionId")
	sess, err := h.registry.MarkPaid(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondHTML(w, http.StatusNotFound, "<h2>Payment session not found</h2>")
		return
	case errors.Is(err, domain.ErrSessionExpired):
		respondHTML(w, http.StatusOK, "<h2>QR code expired</h2><p>Ask the cashier for a new one.</p>")
		return
	case err != nil:
		h.log.Error("mark paid failed", zap.String("session_id", id), zap.Error(err))
		respondHTML(w, http.StatusInternalServerError, "<h2>Something went wrong</h2>")
		return
	}

	h.log.Info("payer confirmed session",
		zap.String("session_id", sess.ID), zap.String("order_ref", sess.OrderRef))
	respondHTML(w, http.StatusOK, fmt.Sprintf(
		"<h2>Payment confirmed</h2><p>Reference %s. You can return to the register.</p>", sess.OrderRef))
}

func respondHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
