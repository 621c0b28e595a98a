package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	claimed map[string]bool
	err     error
	lastTTL time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{claimed: map[string]bool{}}
}

func (f *fakeStore) SetNX(_ context.Context, key string, _ any, ttl time.Duration) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.lastTTL = ttl
	if f.claimed[key] {
		return false, nil
	}
	f.claimed[key] = true
	return true, nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return "prod:idempotency:" + scope + ":" + id
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.claimed, k)
	}
	return nil
}

func TestClaimOnce(t *testing.T) {
	store := newFakeStore()
	guard, err := NewGuard(store, 24*time.Hour)
	require.NoError(t, err)

	eventID := uuid.New()
	first, err := guard.Claim(context.Background(), "delivery", eventID)
	require.NoError(t, err)
	require.True(t, first)
	require.Equal(t, 24*time.Hour, store.lastTTL)
	require.True(t, store.claimed["prod:idempotency:evt:processed:delivery:"+eventID.String()])

	second, err := guard.Claim(context.Background(), "delivery", eventID)
	require.NoError(t, err)
	require.False(t, second)

	other, err := guard.Claim(context.Background(), "reminders", eventID)
	require.NoError(t, err)
	require.True(t, other, "claims are scoped per consumer")
}

func TestReleaseAllowsRetry(t *testing.T) {
	store := newFakeStore()
	guard, err := NewGuard(store, time.Hour)
	require.NoError(t, err)

	eventID := uuid.New()
	_, err = guard.Claim(context.Background(), "delivery", eventID)
	require.NoError(t, err)
	require.NoError(t, guard.Release(context.Background(), "delivery", eventID))

	again, err := guard.Claim(context.Background(), "delivery", eventID)
	require.NoError(t, err)
	require.True(t, again)
}

func TestClaimErrors(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("boom")
	guard, err := NewGuard(store, time.Hour)
	require.NoError(t, err)

	_, err = guard.Claim(context.Background(), "delivery", uuid.New())
	require.Error(t, err)

	_, err = guard.Claim(context.Background(), "", uuid.New())
	require.Error(t, err)
	_, err = guard.Claim(context.Background(), "delivery", uuid.Nil)
	require.Error(t, err)

	_, err = NewGuard(nil, time.Hour)
	require.Error(t, err)
	_, err = NewGuard(store, 0)
	require.Error(t, err)
}
