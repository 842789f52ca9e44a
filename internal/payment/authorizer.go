package payment

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// CardAuthorizer resolves a card charge to an immediate approve/decline.
type CardAuthorizer interface {
	Authorize(ctx context.Context, amount float64) (bool, error)
}

// SimulatedAuthorizer approves a configurable share of charges. There is no
// real gateway behind it.
type SimulatedAuthorizer struct {
	approveRate float64

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSimulatedAuthorizer(approveRate float64) *SimulatedAuthorizer {
	return &SimulatedAuthorizer{
		approveRate: approveRate,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (a *SimulatedAuthorizer) Authorize(_ context.Context, _ float64) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rnd.Float64() < a.approveRate, nil
}
