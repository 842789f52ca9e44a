package payment

import (
	"context"
	"sync"
	"time"

	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/domain"
)

// MockCatalog implements cart.CatalogClient for testing
type MockCatalog struct {
	Products map[int64]domain.Product
}

func (m *MockCatalog) Product(_ context.Context, id int64) (domain.Product, error) {
	p, ok := m.Products[id]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

// MockRegistry implements session.Registry with controllable statuses
type MockRegistry struct {
	mu       sync.Mutex
	sessions map[string]domain.PaymentSession
	seq      int
	getCalls int

	CreateErr error
}

func NewMockRegistry() *MockRegistry {
	return &MockRegistry{sessions: make(map[string]domain.PaymentSession)}
}

func (m *MockRegistry) Create(_ context.Context, total float64, currency string, ttl time.Duration) (domain.PaymentSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return domain.PaymentSession{}, m.CreateErr
	}
	m.seq++
	id := "sess-" + string(rune('0'+m.seq))
	sess := domain.PaymentSession{
		ID:        id,
		OrderRef:  "ORD-TEST" + string(rune('0'+m.seq)),
		Total:     total,
		Currency:  currency,
		Status:    domain.SessionPending,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(ttl),
	}
	m.sessions[id] = sess
	return sess, nil
}

func (m *MockRegistry) Get(_ context.Context, id string) (domain.PaymentSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	sess, ok := m.sessions[id]
	if !ok {
		return domain.PaymentSession{}, domain.ErrNotFound
	}
	return sess, nil
}

func (m *MockRegistry) MarkPaid(_ context.Context, id string) (domain.PaymentSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return domain.PaymentSession{}, domain.ErrNotFound
	}
	sess.Status = domain.SessionPaid
	m.sessions[id] = sess
	return sess, nil
}

// SetStatus flips a session from the outside, like the paying device would.
func (m *MockRegistry) SetStatus(id string, status domain.SessionStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess := m.sessions[id]
	sess.Status = status
	m.sessions[id] = sess
}

func (m *MockRegistry) GetCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getCalls
}

// MockRecorder implements SaleRecorder for testing
type MockRecorder struct {
	mu       sync.Mutex
	OrderID  int64
	Err      error
	Recorded []domain.CartSnapshot
}

func (m *MockRecorder) Record(_ context.Context, snapshot domain.CartSnapshot) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	m.Recorded = append(m.Recorded, snapshot)
	return m.OrderID, nil
}

// MockAuthorizer implements CardAuthorizer with a fixed outcome
type MockAuthorizer struct {
	Approved bool
	Err      error
}

func (m *MockAuthorizer) Authorize(_ context.Context, _ float64) (bool, error) {
	return m.Approved, m.Err
}

// MockPublisher implements SalePublisher and captures published events
type MockPublisher struct {
	mu        sync.Mutex
	Published []int64
	Err       error
}

func (m *MockPublisher) SaleCompleted(_ context.Context, orderID int64, _ string, _ domain.CartSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, orderID)
	return m.Err
}
