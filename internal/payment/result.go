package payment

import (
	"fmt"

	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/domain"
)

// Method is a payment method of one checkout attempt.
type Method string

const (
	MethodCash Method = "cash"
	MethodCard Method = "card"
	MethodQR   Method = "qr"
)

// ParseMethod validates a wire-level method string.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodCash, MethodCard, MethodQR:
		return Method(s), nil
	default:
		return "", fmt.Errorf("%w: unknown payment method %q", domain.ErrInvalidInput, s)
	}
}

// Result is the tagged outcome of a confirmed payment, one variant per
// method.
type Result interface {
	Method() Method
}

type CashResult struct {
	Received float64 `json:"received"`
	Change   float64 `json:"change"`
}

func (CashResult) Method() Method { return MethodCash }

type CardResult struct {
	Approved bool `json:"approved"`
}

func (CardResult) Method() Method { return MethodCard }

type QRResult struct {
	SessionID string `json:"session_id"`
	OrderRef  string `json:"order_ref"`
}

func (QRResult) Method() Method { return MethodQR }
