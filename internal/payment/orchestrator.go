package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/cart"
	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/domain"
	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/metrics"
	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/session"
)

// ErrCardDeclined reports a declined simulated card charge.
var ErrCardDeclined = errors.New("card payment declined")

// SaleRecorder persists a finalized sale upstream.
type SaleRecorder interface {
	Record(ctx context.Context, snapshot domain.CartSnapshot) (int64, error)
}

// SalePublisher emits a sale-completed event. Optional.
type SalePublisher interface {
	SaleCompleted(ctx context.Context, orderID int64, method string, snapshot domain.CartSnapshot) error
}

// Config carries the orchestrator tunables.
type Config struct {
	PollInterval time.Duration
	SessionTTL   time.Duration
	Currency     string
}

// State is a read-only view of the current checkout attempt.
type State struct {
	Method      Method               `json:"method"`
	Total       float64              `json:"total"`
	Received    float64              `json:"received"`
	Change      float64              `json:"change"`
	Confirmed   bool                 `json:"confirmed"`
	QRSessionID string               `json:"qr_session_id,omitempty"`
	QROrderRef  string               `json:"qr_order_ref,omitempty"`
	QRStatus    domain.SessionStatus `json:"qr_status,omitempty"`
}

// Orchestrator drives one checkout attempt to confirmation and finalization.
// Cash confirms locally, card resolves through the authorizer, QR waits on an
// out-of-band confirmation tracked by the session registry.
type Orchestrator struct {
	cart       *cart.Cart
	registry   session.Registry
	recorder   SaleRecorder
	authorizer CardAuthorizer
	publisher  SalePublisher
	metrics    *metrics.Metrics
	log        *zap.Logger
	cfg        Config

	mu        sync.Mutex
	method    Method
	cancelled bool
	confirmed bool
	result    Result
	received  float64

	qrSessionID string
	qrOrderRef  string
	qrStatus    domain.SessionStatus
	pollCancel  context.CancelFunc
	pollDone    chan struct{}
}

func NewOrchestrator(
	c *cart.Cart,
	registry session.Registry,
	recorder SaleRecorder,
	authorizer CardAuthorizer,
	publisher SalePublisher,
	m *metrics.Metrics,
	cfg Config,
	log *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		cart:       c,
		registry:   registry,
		recorder:   recorder,
		authorizer: authorizer,
		publisher:  publisher,
		metrics:    m,
		log:        log,
		cfg:        cfg,
		method:     MethodCash,
	}
}

// SelectMethod switches the attempt to a method, tearing down any QR polling
// and clearing method-specific state.
func (o *Orchestrator) SelectMethod(m Method) error {
	if _, err := ParseMethod(string(m)); err != nil {
		return err
	}
	o.stopPolling()

	o.mu.Lock()
	defer o.mu.Unlock()
	o.method = m
	o.resetAttemptLocked()
	o.log.Info("payment method selected", zap.String("method", string(m)))
	return nil
}

// EnterCash records the received amount and returns the change due, zero
// while the amount is still insufficient. Sufficiency is enforced at Confirm.
func (o *Orchestrator) EnterCash(received float64) (float64, error) {
	if received < 0 {
		return 0, fmt.Errorf("%w: received amount must not be negative", domain.ErrInvalidInput)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.method != MethodCash {
		return 0, fmt.Errorf("%w: cash amount entered while method is %s", domain.ErrInvalidInput, o.method)
	}
	o.received = domain.Round2(received)
	o.confirmed = false
	o.result = nil

	total := o.cart.Total()
	if o.received < total {
		return 0, nil
	}
	return domain.Round2(o.received - total), nil
}

// GenerateQR abandons any previous session for this attempt (the registry
// entry keeps its own expiry schedule) and creates a fresh one for the cart
// total, then starts the status polling loop.
func (o *Orchestrator) GenerateQR(ctx context.Context) (domain.PaymentSession, error) {
	o.mu.Lock()
	if o.method != MethodQR {
		o.mu.Unlock()
		return domain.PaymentSession{}, fmt.Errorf("%w: QR requested while method is %s", domain.ErrInvalidInput, o.method)
	}
	total := o.cart.Total()
	o.mu.Unlock()

	if total <= 0 {
		return domain.PaymentSession{}, domain.ErrEmptyCart
	}

	o.stopPolling()

	sess, err := o.registry.Create(ctx, domain.Round2(total), o.cfg.Currency, o.cfg.SessionTTL)
	if err != nil {
		return domain.PaymentSession{}, err
	}
	o.metrics.SessionsCreated.Inc()

	pollCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	o.mu.Lock()
	o.qrSessionID = sess.ID
	o.qrOrderRef = sess.OrderRef
	o.qrStatus = domain.SessionPending
	o.confirmed = false
	o.result = nil
	o.cancelled = false
	o.pollCancel = cancel
	o.pollDone = done
	o.mu.Unlock()

	go o.poll(pollCtx, sess.ID, done)
	return sess, nil
}

// poll queries the session status at a fixed interval until it reaches a
// terminal state or the loop is cancelled.
func (o *Orchestrator) poll(ctx context.Context, sessionID string, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(o.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// A cancel racing the tick must still win: no status query
			// happens after cancellation.
			if ctx.Err() != nil {
				return
			}
			sess, err := o.registry.Get(ctx, sessionID)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				o.log.Warn("qr status poll failed", zap.String("session_id", sessionID), zap.Error(err))
				continue
			}

			o.mu.Lock()
			if o.qrSessionID != sessionID {
				// A newer session replaced this one; stop silently.
				o.mu.Unlock()
				return
			}
			o.qrStatus = sess.Status
			o.mu.Unlock()

			switch sess.Status {
			case domain.SessionPaid:
				o.log.Info("qr payment confirmed", zap.String("session_id", sessionID))
				return
			case domain.SessionExpired:
				o.metrics.SessionsExpired.Inc()
				o.log.Info("qr session expired while polling", zap.String("session_id", sessionID))
				return
			}
		}
	}
}

// Confirm resolves the attempt with a method-specific check and returns the
// tagged result.
func (o *Orchestrator) Confirm(ctx context.Context) (Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cancelled {
		return nil, domain.ErrPaymentCancelled
	}

	var result Result
	switch o.method {
	case MethodCash:
		total := o.cart.Total()
		if o.received < total {
			return nil, domain.ErrPaymentInsufficient
		}
		result = CashResult{Received: o.received, Change: domain.Round2(o.received - total)}

	case MethodCard:
		approved, err := o.authorizer.Authorize(ctx, domain.Round2(o.cart.Total()))
		if err != nil {
			return nil, err
		}
		if !approved {
			return nil, ErrCardDeclined
		}
		result = CardResult{Approved: true}

	case MethodQR:
		if o.qrSessionID == "" || o.qrStatus != domain.SessionPaid {
			return nil, domain.ErrPaymentUnconfirmed
		}
		result = QRResult{SessionID: o.qrSessionID, OrderRef: o.qrOrderRef}
	}

	o.confirmed = true
	o.result = result
	o.metrics.PaymentsConfirmed.WithLabelValues(string(o.method)).Inc()
	o.log.Info("payment confirmed", zap.String("method", string(o.method)))
	return result, nil
}

// Cancel abandons the attempt: polling stops, QR display state clears, the
// cart stays as it was. Safe to call with no poll in flight.
func (o *Orchestrator) Cancel() {
	o.stopPolling()

	o.mu.Lock()
	defer o.mu.Unlock()
	o.resetAttemptLocked()
	o.cancelled = true
	o.log.Info("checkout cancelled")
}

// Finalize records the confirmed sale. On success the cart is locked, the
// sale event published and the cart cleared; on failure the cart remains
// unlocked and unchanged so the attempt can be retried.
func (o *Orchestrator) Finalize(ctx context.Context) (int64, error) {
	o.mu.Lock()
	if !o.confirmed {
		o.mu.Unlock()
		return 0, domain.ErrPaymentUnconfirmed
	}
	method := o.method
	o.mu.Unlock()

	snapshot := o.cart.Snapshot()
	if len(snapshot.Items) == 0 {
		return 0, domain.ErrEmptyCart
	}

	orderID, err := o.recorder.Record(ctx, snapshot)
	if err != nil {
		o.log.Error("sale recording failed", zap.Error(err))
		return 0, err
	}

	o.cart.Lock()
	o.metrics.SalesRecorded.Inc()

	if o.publisher != nil {
		// Best effort; the publisher logs its own failures.
		_ = o.publisher.SaleCompleted(ctx, orderID, string(method), snapshot)
	}

	o.cart.Clear()

	o.stopPolling()
	o.mu.Lock()
	o.resetAttemptLocked()
	o.mu.Unlock()

	o.log.Info("checkout finalized",
		zap.Int64("order_id", orderID),
		zap.String("method", string(method)))
	return orderID, nil
}

// State reports the attempt for display.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()

	total := o.cart.Total()
	var change float64
	if o.method == MethodCash && o.received >= total {
		change = domain.Round2(o.received - total)
	}
	return State{
		Method:      o.method,
		Total:       domain.Round2(total),
		Received:    o.received,
		Change:      change,
		Confirmed:   o.confirmed,
		QRSessionID: o.qrSessionID,
		QROrderRef:  o.qrOrderRef,
		QRStatus:    o.qrStatus,
	}
}

// resetAttemptLocked clears method-specific state. Caller holds the lock.
func (o *Orchestrator) resetAttemptLocked() {
	o.received = 0
	o.confirmed = false
	o.cancelled = false
	o.result = nil
	o.qrSessionID = ""
	o.qrOrderRef = ""
	o.qrStatus = ""
}

// stopPolling cancels the poll loop, if any, and waits for it to exit so no
// status query can happen after cancellation.
func (o *Orchestrator) stopPolling() {
	o.mu.Lock()
	cancel, done := o.pollCancel, o.pollDone
	o.pollCancel, o.pollDone = nil, nil
	o.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}
