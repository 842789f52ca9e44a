package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/cart"
	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/domain"
)

type CartHandler struct {
	cart    *cart.Cart
	timeout time.Duration
	log     *zap.Logger
}

func NewCartHandler(c *cart.Cart, timeout time.Duration, log *zap.Logger) *CartHandler {
	return &CartHandler{cart: c, timeout: timeout, log: log}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type CartItemDTO struct {
	Index     int     `json:"index"`
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

type CartResponseDTO struct {
	Items    []CartItemDTO `json:"items"`
	Subtotal float64       `json:"subtotal"`
	Total    float64       `json:"total"`
	Locked   bool          `json:"locked"`
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, h.log, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	if req.Quantity <= 0 {
		respondError(w, h.log, http.StatusBadRequest, "invalid_quantity", "quantity must be positive")
		return
	}

	if _, err := h.cart.AddItem(ctx, req.ProductID, req.Quantity); err != nil {
		respondDomainError(w, h.log, err)
		return
	}

	respondJSON(w, h.log, http.StatusCreated, h.cartView())
}

// DELETE /api/v1/cart/items/{index}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, h.log, http.StatusBadRequest, "invalid_index", "index must be an integer")
		return
	}

	if _, err := h.cart.RemoveItem(index); err != nil {
		respondDomainError(w, h.log, err)
		return
	}

	respondJSON(w, h.log, http.StatusOK, h.cartView())
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.log, http.StatusOK, h.cartView())
}

// cartView renders the cart with 1-based display indices and rounded totals.
func (h *CartHandler) cartView() CartResponseDTO {
	items := h.cart.Items()
	dto := CartResponseDTO{
		Items:    make([]CartItemDTO, len(items)),
		Subtotal: domain.Round2(h.cart.Subtotal()),
		Total:    domain.Round2(h.cart.Total()),
		Locked:   h.cart.Locked(),
	}
	for i, item := range items {
		dto.Items[i] = CartItemDTO{
			Index:     i + 1,
			ProductID: item.Product.ID,
			Name:      item.Product.Name,
			Category:  item.Product.Category,
			UnitPrice: domain.Round2(item.Product.Price),
			Quantity:  item.Quantity,
		}
	}
	return dto
}
