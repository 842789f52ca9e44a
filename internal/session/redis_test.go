package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/clock"
	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/domain"
)

// setupRedisStore runs a miniredis server and wires a store with a fixed clock
func setupRedisStore(t *testing.T) (*RedisStore, *clock.Fixed) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	clk := clock.NewFixed(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	store := NewRedisStore(client, "http://localhost:8080", clk, zap.NewNop())
	t.Cleanup(func() {
		store.Close()
		client.Close()
	})
	return store, clk
}

func TestRedisStore_Create_And_Get(t *testing.T) {
	store, clk := setupRedisStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, 186.0, "BOB", 2*time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, domain.SessionPending, sess.Status)
	assert.Equal(t, clk.Now().Add(2*time.Minute), sess.ExpiresAt)

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, sess.OrderRef, got.OrderRef)
	assert.Equal(t, 186.0, got.Total)
	assert.Equal(t, domain.SessionPending, got.Status)
}

func TestRedisStore_Get_NotFound(t *testing.T) {
	store, _ := setupRedisStore(t)

	_, err := store.Get(context.Background(), "nonexistent-id")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedisStore_Get_LazyExpiry(t *testing.T) {
	store, clk := setupRedisStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, 50.0, "BOB", time.Minute)
	require.NoError(t, err)

	clk.Advance(time.Minute + time.Second)

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionExpired, got.Status)

	// The flip was persisted, not just reported
	again, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionExpired, again.Status)
}

func TestRedisStore_MarkPaid_Success(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, 50.0, "BOB", time.Minute)
	require.NoError(t, err)

	paid, err := store.MarkPaid(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionPaid, paid.Status)

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionPaid, got.Status)
}

func TestRedisStore_MarkPaid_Idempotent(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, 50.0, "BOB", time.Minute)
	require.NoError(t, err)

	_, err = store.MarkPaid(ctx, sess.ID)
	require.NoError(t, err)

	again, err := store.MarkPaid(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionPaid, again.Status)
}

func TestRedisStore_MarkPaid_Expired(t *testing.T) {
	store, clk := setupRedisStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, 50.0, "BOB", time.Minute)
	require.NoError(t, err)

	clk.Advance(time.Minute + time.Second)

	_, err = store.MarkPaid(ctx, sess.ID)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionExpired, got.Status)
}

func TestRedisStore_MarkPaid_NotFound(t *testing.T) {
	store, _ := setupRedisStore(t)

	_, err := store.MarkPaid(context.Background(), "nonexistent-id")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedisStore_PaidNeverExpires(t *testing.T) {
	store, clk := setupRedisStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, 50.0, "BOB", time.Minute)
	require.NoError(t, err)

	_, err = store.MarkPaid(ctx, sess.ID)
	require.NoError(t, err)

	clk.Advance(time.Hour)

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionPaid, got.Status)
}

func TestRedisStore_Sweep_FlipsOverdueSessions(t *testing.T) {
	store, clk := setupRedisStore(t)
	ctx := context.Background()

	pending, err := store.Create(ctx, 50.0, "BOB", time.Minute)
	require.NoError(t, err)
	paid, err := store.Create(ctx, 80.0, "BOB", time.Minute)
	require.NoError(t, err)
	_, err = store.MarkPaid(ctx, paid.ID)
	require.NoError(t, err)

	clk.Advance(time.Minute + time.Second)
	store.sweep()

	got, err := store.Get(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionExpired, got.Status)

	got, err = store.Get(ctx, paid.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionPaid, got.Status)
}
