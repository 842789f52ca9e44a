package domain

import "time"

type SessionStatus string

const (
	SessionPending SessionStatus = "pending"
	SessionPaid    SessionStatus = "paid"
	SessionExpired SessionStatus = "expired"
)

// IsTerminal reports whether no further transition is allowed.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionPaid || s == SessionExpired
}

// PaymentSession tracks one out-of-band QR payment attempt. Status moves
// pending→paid or pending→expired and never leaves a terminal state.
// JSON names follow the QR wire format.
type PaymentSession struct {
	ID         string        `json:"sessionId"`
	OrderRef   string        `json:"orderRef"`
	Total      float64       `json:"total"`
	Currency   string        `json:"currency"`
	Status     SessionStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
	ExpiresAt  time.Time     `json:"expires_at"`
	PaymentURL string        `json:"payment_url,omitempty"`
}

// ExpiredBy reports whether a still-pending session is overdue at now.
func (s PaymentSession) ExpiredBy(now time.Time) bool {
	return s.Status == SessionPending && now.After(s.ExpiresAt)
}
