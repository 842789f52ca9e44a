package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/clock"
	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/domain"
)

const (
	// recordRetention keeps expired records readable; a poller that missed
	// the flip still gets "expired" instead of a 404.
	recordRetention = 24 * time.Hour

	sweepInterval = 5 * time.Second

	markPaidRetries = 3
)

// RedisStore keeps sessions as JSON records in redis. Status transitions use
// WATCH transactions so a sweep flip and a concurrent MarkPaid cannot lose an
// update. A periodic sweep plays the role of the memory store's timers.
type RedisStore struct {
	client    *redis.Client
	publicURL string
	clock     clock.Clock
	log       *zap.Logger

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewRedisStore(client *redis.Client, publicURL string, clk clock.Clock, log *zap.Logger) *RedisStore {
	s := &RedisStore{
		client:    client,
		publicURL: publicURL,
		clock:     clk,
		log:       log,
		stop:      make(chan struct{}),
	}
	s.wg.Add(1)
	go s.sweepLoop()
	return s
}

func sessionKey(id string) string {
	return "qr:" + id
}

func (s *RedisStore) Create(ctx context.Context, total float64, currency string, ttl time.Duration) (domain.PaymentSession, error) {
	now := s.clock.Now()
	id := newSessionID()
	sess := domain.PaymentSession{
		ID:         id,
		OrderRef:   newOrderRef(),
		Total:      total,
		Currency:   currency,
		Status:     domain.SessionPending,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
		PaymentURL: paymentURL(s.publicURL, id),
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return domain.PaymentSession{}, fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(id), data, ttl+recordRetention).Err(); err != nil {
		return domain.PaymentSession{}, fmt.Errorf("redis set failed: %w", err)
	}

	s.log.Info("qr session created",
		zap.String("session_id", id),
		zap.String("order_ref", sess.OrderRef),
		zap.Float64("total", total),
		zap.Time("expires_at", sess.ExpiresAt))
	return sess, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (domain.PaymentSession, error) {
	sess, err := s.load(ctx, sessionKey(id))
	if err != nil {
		return domain.PaymentSession{}, err
	}
	if sess.ExpiredBy(s.clock.Now()) {
		// Best effort persist; the returned status is expired either way.
		if flipped, err := s.flipExpired(ctx, sessionKey(id)); err == nil {
			return flipped, nil
		}
		sess.Status = domain.SessionExpired
	}
	return sess, nil
}

func (s *RedisStore) MarkPaid(ctx context.Context, id string) (domain.PaymentSession, error) {
	key := sessionKey(id)
	var result domain.PaymentSession
	var terminal error

	txn := func(tx *redis.Tx) error {
		sess, err := s.loadTx(ctx, tx, key)
		if err != nil {
			return err
		}
		if sess.ExpiredBy(s.clock.Now()) {
			sess.Status = domain.SessionExpired
		}
		switch sess.Status {
		case domain.SessionExpired:
			result = sess
			terminal = domain.ErrSessionExpired
			return s.writeTx(ctx, tx, key, sess)
		case domain.SessionPaid:
			result = sess
			return nil
		}
		sess.Status = domain.SessionPaid
		result = sess
		return s.writeTx(ctx, tx, key, sess)
	}

	for i := 0; i < markPaidRetries; i++ {
		terminal = nil
		err := s.client.Watch(ctx, txn, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue // concurrent write, retry against fresh state
		}
		if err != nil {
			return domain.PaymentSession{}, err
		}
		return result, terminal
	}
	return domain.PaymentSession{}, fmt.Errorf("mark paid: too many concurrent updates for %s", id)
}

// Close stops the sweep loop. Records stay in redis until retention.
func (s *RedisStore) Close() {
	close(s.stop)
	s.wg.Wait()
}

func (s *RedisStore) load(ctx context.Context, key string) (domain.PaymentSession, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.PaymentSession{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.PaymentSession{}, fmt.Errorf("redis get failed: %w", err)
	}
	var sess domain.PaymentSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return domain.PaymentSession{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return sess, nil
}

func (s *RedisStore) loadTx(ctx context.Context, tx *redis.Tx, key string) (domain.PaymentSession, error) {
	data, err := tx.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.PaymentSession{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.PaymentSession{}, fmt.Errorf("redis get failed: %w", err)
	}
	var sess domain.PaymentSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return domain.PaymentSession{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return sess, nil
}

func (s *RedisStore) writeTx(ctx context.Context, tx *redis.Tx, key string, sess domain.PaymentSession) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, redis.KeepTTL)
		return nil
	})
	return err
}

// flipExpired transitions a pending overdue session to expired, if it is
// still pending by the time the transaction runs.
func (s *RedisStore) flipExpired(ctx context.Context, key string) (domain.PaymentSession, error) {
	var result domain.PaymentSession
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		sess, err := s.loadTx(ctx, tx, key)
		if err != nil {
			return err
		}
		if sess.Status == domain.SessionPending && sess.ExpiredBy(s.clock.Now()) {
			sess.Status = domain.SessionExpired
			if err := s.writeTx(ctx, tx, key, sess); err != nil {
				return err
			}
		}
		result = sess
		return nil
	}, key)
	return result, err
}

// sweepLoop periodically flips overdue pending sessions, so expiry advances
// even when nobody is polling.
func (s *RedisStore) sweepLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *RedisStore) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepInterval)
	defer cancel()

	iter := s.client.Scan(ctx, 0, "qr:*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		sess, err := s.load(ctx, key)
		if err != nil {
			continue
		}
		if sess.ExpiredBy(s.clock.Now()) {
			if _, err := s.flipExpired(ctx, key); err != nil {
				s.log.Warn("sweep flip failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	if err := iter.Err(); err != nil {
		s.log.Warn("session sweep failed", zap.Error(err))
	}
}
