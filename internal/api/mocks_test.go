package api

import (
	"context"
	"sync"
	"time"

	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/domain"
)

// CatalogMock implements both the Catalog interface and cart.CatalogClient
type CatalogMock struct {
	products map[int64]domain.Product
	err      error
}

func (m *CatalogMock) Product(_ context.Context, id int64) (domain.Product, error) {
	if m.err != nil {
		return domain.Product{}, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

func (m *CatalogMock) Products(_ context.Context) ([]domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	products := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		products = append(products, p)
	}
	return products, nil
}

// RegistryMock implements session.Registry with in-memory records
type RegistryMock struct {
	mu       sync.Mutex
	sessions map[string]domain.PaymentSession
	seq      int
	err      error
}

func newRegistryMock() *RegistryMock {
	return &RegistryMock{sessions: make(map[string]domain.PaymentSession)}
}

func (m *RegistryMock) Create(_ context.Context, total float64, currency string, ttl time.Duration) (domain.PaymentSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.PaymentSession{}, m.err
	}
	m.seq++
	id := "sess-" + string(rune('0'+m.seq))
	sess := domain.PaymentSession{
		ID:        id,
		OrderRef:  "ORD-AAAAA" + string(rune('0'+m.seq)),
		Total:     total,
		Currency:  currency,
		Status:    domain.SessionPending,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(ttl),
	}
	m.sessions[id] = sess
	return sess, nil
}

func (m *RegistryMock) Get(_ context.Context, id string) (domain.PaymentSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return domain.PaymentSession{}, domain.ErrNotFound
	}
	return sess, nil
}

func (m *RegistryMock) MarkPaid(_ context.Context, id string) (domain.PaymentSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return domain.PaymentSession{}, domain.ErrNotFound
	}
	if sess.Status == domain.SessionExpired {
		return sess, domain.ErrSessionExpired
	}
	sess.Status = domain.SessionPaid
	m.sessions[id] = sess
	return sess, nil
}

func (m *RegistryMock) setStatus(id string, status domain.SessionStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess := m.sessions[id]
	sess.Status = status
	m.sessions[id] = sess
}
