package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 186.0, Round2(186.0))
	assert.Equal(t, 14.0, Round2(200.0-186.0))
	assert.Equal(t, 9.3, Round2(9.3000000000000007))
	assert.Equal(t, 0.1, Round2(0.1+1e-12))
	assert.Equal(t, 200.0, Round2(199.999))
}

func TestProduct_Normalize(t *testing.T) {
	p := Product{ID: 1, Name: "Cable", Price: 15}
	p.Normalize()
	assert.Equal(t, DefaultCategory, p.Category)

	p = Product{ID: 2, Name: "Pan", Price: 10, Category: "food"}
	p.Normalize()
	assert.Equal(t, "food", p.Category)
}

func TestLineItem_EffectiveQuantity(t *testing.T) {
	assert.Equal(t, 3, LineItem{Quantity: 3}.EffectiveQuantity())
	assert.Equal(t, 1, LineItem{Quantity: 0}.EffectiveQuantity())
	assert.Equal(t, 1, LineItem{Quantity: -5}.EffectiveQuantity())
}

func TestSessionStatus_IsTerminal(t *testing.T) {
	assert.False(t, SessionPending.IsTerminal())
	assert.True(t, SessionPaid.IsTerminal())
	assert.True(t, SessionExpired.IsTerminal())
}

func TestPaymentSession_ExpiredBy(t *testing.T) {
	deadline := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	sess := PaymentSession{Status: SessionPending, ExpiresAt: deadline}

	assert.False(t, sess.ExpiredBy(deadline))
	assert.True(t, sess.ExpiredBy(deadline.Add(time.Second)))

	// Terminal states never report expired
	sess.Status = SessionPaid
	assert.False(t, sess.ExpiredBy(deadline.Add(time.Hour)))
	sess.Status = SessionExpired
	assert.False(t, sess.ExpiredBy(deadline.Add(time.Hour)))
}

func TestUpstreamError_Error(t *testing.T) {
	err := &UpstreamError{StatusCode: 502, Body: "bad gateway"}
	assert.Equal(t, "upstream returned 502: bad gateway", err.Error())
}
