package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/payment"
)

type CheckoutHandler struct {
	orch    *payment.Orchestrator
	timeout time.Duration
	log     *zap.Logger
}

func NewCheckoutHandler(orch *payment.Orchestrator, timeout time.Duration, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{orch: orch, timeout: timeout, log: log}
}

type SelectMethodRequestDTO struct {
	Method string `json:"method"`
}

type CashRequestDTO struct {
	Received float64 `json:"received"`
}

type CashResponseDTO struct {
	Received   float64 `json:"received"`
	Change     float64 `json:"change"`
	Sufficient bool    `json:"sufficient"`
}

type ConfirmResponseDTO struct {
	Method string         `json:"method"`
	Result payment.Result `json:"result"`
}

type FinalizeResponseDTO struct {
	OrderID int64 `json:"order_id"`
}

// GET /api/v1/checkout
func (h *CheckoutHandler) State(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.log, http.StatusOK, h.orch.State())
}

// POST /api/v1/checkout/method
func (h *CheckoutHandler) SelectMethod(w http.ResponseWriter, r *http.Request) {
	var req SelectMethodRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	method, err := payment.ParseMethod(req.Method)
	if err != nil {
		respondDomainError(w, h.log, err)
		return
	}
	if err := h.orch.SelectMethod(method); err != nil {
		respondDomainError(w, h.log, err)
		return
	}
	respondJSON(w, h.log, http.StatusOK, h.orch.State())
}

// POST /api/v1/checkout/cash
func (h *CheckoutHandler) EnterCash(w http.ResponseWriter, r *http.Request) {
	var req CashRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	change, err := h.orch.EnterCash(req.Received)
	if err != nil {
		respondDomainError(w, h.log, err)
		return
	}
	state := h.orch.State()
	respondJSON(w, h.log, http.StatusOK, CashResponseDTO{
		Received:   state.Received,
		Change:     change,
		Sufficient: state.Received >= state.Total,
	})
}

// POST /api/v1/checkout/qr
func (h *CheckoutHandler) GenerateQR(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess, err := h.orch.GenerateQR(ctx)
	if err != nil {
		respondDomainError(w, h.log, err)
		return
	}
	respondJSON(w, h.log, http.StatusCreated, sess)
}

// POST /api/v1/checkout/confirm
func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	result, err := h.orch.Confirm(ctx)
	if err != nil {
		respondDomainError(w, h.log, err)
		return
	}
	respondJSON(w, h.log, http.StatusOK, ConfirmResponseDTO{
		Method: string(result.Method()),
		Result: result,
	})
}

// POST /api/v1/checkout/finalize
func (h *CheckoutHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID, err := h.orch.Finalize(ctx)
	if err != nil {
		respondDomainError(w, h.log, err)
		return
	}
	respondJSON(w, h.log, http.StatusOK, FinalizeResponseDTO{OrderID: orderID})
}

// POST /api/v1/checkout/cancel
func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.orch.Cancel()
	w.WriteHeader(http.StatusNoContent)
}
