package surrealdb

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/feedpulse/internal/common"
	"github.com/bobmcallan/feedpulse/internal/interfaces"
)

func newTestKV(t *testing.T) *KVStore {
	t.Helper()
	s, err := NewKVStore(context.Background(), testDB(t), common.NewSilentLogger())
	require.NoError(t, err)
	return s
}

func TestKVStore_SetGetDelete(t *testing.T) {
	s := newTestKV(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "ce_token")
	assert.ErrorIs(t, err, interfaces.ErrKeyNotFound)

	require.NoError(t, s.Set(ctx, "ce_token", "first"))
	require.NoError(t, s.Set(ctx, "ce_token", "second"))
	v, err := s.Get(ctx, "ce_token")
	require.NoError(t, err)
	assert.Equal(t, "second", v)

	require.NoError(t, s.Delete(ctx, "ce_token"))
	_, err = s.Get(ctx, "ce_token")
	assert.ErrorIs(t, err, interfaces.ErrKeyNotFound)
}

func TestKVStore_CloseLeavesBorrowedConnection(t *testing.T) {
	db := testDB(t)
	s, err := NewKVStore(context.Background(), db, common.NewSilentLogger())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	require.NoError(t, s.Set(context.Background(), "ce_theme", "light"))
}

func TestStress_KVStore_ConcurrentUpserts(t *testing.T) {
	s := newTestKV(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.Set(ctx, fmt.Sprintf("session_%d", i), fmt.Sprintf("v%d", i)))
		}(i)
	}
	wg.Wait()

	for i := 0; i < 25; i++ {
		v, err := s.Get(ctx, fmt.Sprintf("session_%d", i))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("v%d", i), v)
	}
}
