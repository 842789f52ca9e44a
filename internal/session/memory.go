package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/clock"
	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/domain"
)

// MemoryStore keeps sessions in a mutex-guarded map with a one-shot expiry
// timer per session. All status transitions happen under the store lock, so
// a scheduled flip can never race a MarkPaid into paid→expired.
type MemoryStore struct {
	publicURL string
	clock     clock.Clock
	log       *zap.Logger

	mu       sync.Mutex
	sessions map[string]*domain.PaymentSession
	timers   map[string]*time.Timer
	closed   bool
}

func NewMemoryStore(publicURL string, clk clock.Clock, log *zap.Logger) *MemoryStore {
	return &MemoryStore{
		publicURL: publicURL,
		clock:     clk,
		log:       log,
		sessions:  make(map[string]*domain.PaymentSession),
		timers:    make(map[string]*time.Timer),
	}
}

func (s *MemoryStore) Create(_ context.Context, total float64, currency string, ttl time.Duration) (domain.PaymentSession, error) {
	now := s.clock.Now()
	id := newSessionID()
	sess := &domain.PaymentSession{
		ID:         id,
		OrderRef:   newOrderRef(),
		Total:      total,
		Currency:   currency,
		Status:     domain.SessionPending,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
		PaymentURL: paymentURL(s.publicURL, id),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.PaymentSession{}, domain.ErrSessionExpired
	}
	s.sessions[id] = sess
	s.timers[id] = time.AfterFunc(ttl+ExpiryGrace, func() { s.expire(id) })

	s.log.Info("qr session created",
		zap.String("session_id", id),
		zap.String("order_ref", sess.OrderRef),
		zap.Float64("total", total),
		zap.Time("expires_at", sess.ExpiresAt))
	return *sess, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (domain.PaymentSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return domain.PaymentSession{}, domain.ErrNotFound
	}
	// Lazy flip covers the window between the deadline and the timer.
	if sess.ExpiredBy(s.clock.Now()) {
		sess.Status = domain.SessionExpired
	}
	return *sess, nil
}

func (s *MemoryStore) MarkPaid(_ context.Context, id string) (domain.PaymentSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return domain.PaymentSession{}, domain.ErrNotFound
	}
	if sess.ExpiredBy(s.clock.Now()) {
		sess.Status = domain.SessionExpired
	}
	switch sess.Status {
	case domain.SessionExpired:
		return *sess, domain.ErrSessionExpired
	case domain.SessionPaid:
		// Repeated confirmations are a no-op.
		return *sess, nil
	}

	sess.Status = domain.SessionPaid
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
	s.log.Info("qr session paid", zap.String("session_id", id), zap.String("order_ref", sess.OrderRef))
	return *sess, nil
}

// expire is the scheduled flip. Only a still-pending session transitions.
func (s *MemoryStore) expire(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.timers, id)
	sess, ok := s.sessions[id]
	if !ok || sess.Status != domain.SessionPending {
		return
	}
	sess.Status = domain.SessionExpired
	s.log.Info("qr session expired", zap.String("session_id", id))
}

// Close stops all pending expiry timers.
func (s *MemoryStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}
