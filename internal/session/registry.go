package session

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/domain"
)

// ExpiryGrace is added to the scheduled expiry flip so a status read racing
// the deadline resolves through the lazy check first.
const ExpiryGrace = 2 * time.Second

// Registry owns the QR payment session records. Callers hold only session
// ids; a session may expire regardless of who is polling it.
type Registry interface {
	// Create stores a new pending session and schedules its expiry.
	Create(ctx context.Context, total float64, currency string, ttl time.Duration) (domain.PaymentSession, error)
	// Get returns the session, lazily flipping an overdue pending session
	// to expired before answering.
	Get(ctx context.Context, id string) (domain.PaymentSession, error)
	// MarkPaid flips a pending session to paid. Idempotent on an already
	// paid session; fails with ErrSessionExpired once expired.
	MarkPaid(ctx context.Context, id string) (domain.PaymentSession, error)
}

func newSessionID() string {
	return uuid.NewString()
}

// newOrderRef builds the short human-displayable reference shown next to
// the QR code.
func newOrderRef() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:6])
}

func paymentURL(publicURL, id string) string {
	return strings.TrimRight(publicURL, "/") + "/qr/pay/" + id
}
