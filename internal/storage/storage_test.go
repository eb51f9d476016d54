package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/feedpulse/internal/common"
	"github.com/bobmcallan/feedpulse/internal/interfaces"
	"github.com/bobmcallan/feedpulse/internal/models"
)

func TestNewKeyValueStore(t *testing.T) {
	ctx := context.Background()
	logger := common.NewSilentLogger()

	kv, err := NewKeyValueStore(ctx, logger, common.StorageConfig{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, kv)

	kv, err = NewKeyValueStore(ctx, logger, common.StorageConfig{
		SQLite: common.SQLiteConfig{Path: filepath.Join(t.TempDir(), "kv.db")},
	})
	require.NoError(t, err)
	defer kv.Close()
	require.NoError(t, kv.Set(ctx, "k", "v"))

	_, err = NewKeyValueStore(ctx, logger, common.StorageConfig{Backend: "etcd"})
	assert.ErrorContains(t, err, "unknown storage backend")
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	_, err := m.Get(ctx, "x")
	assert.ErrorIs(t, err, interfaces.ErrKeyNotFound)
	require.NoError(t, m.Set(ctx, "x", "1"))
	v, _ := m.Get(ctx, "x")
	assert.Equal(t, "1", v)
	require.NoError(t, m.Delete(ctx, "x"))
	_, err = m.Get(ctx, "x")
	assert.ErrorIs(t, err, interfaces.ErrKeyNotFound)
}

func TestScoped_IsolatesSessions(t *testing.T) {
	parent := NewMemoryStore()
	ctx := context.Background()
	a := NewScoped(parent, "sess-a")
	b := NewScoped(parent, "sess-b")

	require.NoError(t, a.Set(ctx, ThemeKey, models.ThemeLight))
	_, err := b.Get(ctx, ThemeKey)
	assert.ErrorIs(t, err, interfaces.ErrKeyNotFound)

	raw, err := parent.Get(ctx, "sess-a:"+ThemeKey)
	require.NoError(t, err)
	assert.Equal(t, models.ThemeLight, raw)
}

func TestStarred_ToggleAndList(t *testing.T) {
	kv := NewMemoryStore()
	s := NewStarred(kv, common.NewSilentLogger())
	ctx := context.Background()

	ids, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	on, err := s.Toggle(ctx, "f1")
	require.NoError(t, err)
	assert.True(t, on)
	require.NoError(t, s.Add(ctx, "f2"))
	require.NoError(t, s.Add(ctx, "f2"))

	raw, _ := kv.Get(ctx, StarredKey)
	assert.JSONEq(t, `["f1","f2"]`, raw)

	on, err = s.Toggle(ctx, "f1")
	require.NoError(t, err)
	assert.False(t, on)

	has, err := s.Contains(ctx, "f2")
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, s.Remove(ctx, "f2"))
	require.NoError(t, s.Remove(ctx, "missing"))
	ids, _ = s.List(ctx)
	assert.Empty(t, ids)
}

func TestStarred_CorruptValueIsEmpty(t *testing.T) {
	kv := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, StarredKey, "{not json"))

	s := NewStarred(kv, common.NewSilentLogger())
	ids, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	on, err := s.Toggle(ctx, "f9")
	require.NoError(t, err)
	assert.True(t, on)
}

func TestStress_StarredConcurrentToggles(t *testing.T) {
	s := NewStarred(NewMemoryStore(), common.NewSilentLogger())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Toggle(ctx, fmt.Sprintf("f%d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	ids, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 50)
}

func TestTheme(t *testing.T) {
	kv := NewMemoryStore()
	th := NewTheme(kv)
	ctx := context.Background()

	got, err := th.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ThemeDark, got)

	next, err := th.Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ThemeLight, next)
	raw, _ := kv.Get(ctx, ThemeKey)
	assert.Equal(t, "light", raw)

	next, _ = th.Toggle(ctx)
	assert.Equal(t, models.ThemeDark, next)

	assert.ErrorIs(t, th.Set(ctx, "sepia"), ErrInvalidTheme)

	require.NoError(t, kv.Set(ctx, ThemeKey, "garbage"))
	got, _ = th.Get(ctx)
	assert.Equal(t, models.ThemeDark, got)
}
