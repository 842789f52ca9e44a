package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrCheckoutLocked    = errors.New("checkout already started, cart is locked")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidIndex      = errors.New("invalid item index")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrMissingPrice      = errors.New("product has no price registered")
	ErrConnection        = errors.New("connection error")

	ErrPaymentInsufficient = errors.New("received amount is below total")
	ErrPaymentUnconfirmed  = errors.New("payment not yet confirmed")
	ErrPaymentCancelled    = errors.New("payment cancelled")
	ErrSessionExpired      = errors.New("payment session expired")
)

// UpstreamError carries a non-2xx backend response verbatim.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Body)
}
