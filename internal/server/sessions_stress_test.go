package server

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bobmcallan/feedpulse/internal/app"
	"github.com/bobmcallan/feedpulse/internal/common"
	"github.com/bobmcallan/feedpulse/internal/storage"
)

func newTestStore(t *testing.T) *sessionStore {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.API.BaseURL = "http://127.0.0.1:1/api/v1"
	a := app.New(cfg, common.NewSilentLogger(), storage.NewMemoryStore(), app.ModeServer)
	st := newSessionStore(a, time.Minute)
	t.Cleanup(st.closeAll)
	return st
}

func sessionCtx(token string) context.Context {
	return common.WithSession(context.Background(), &common.SessionContext{
		Token:      token,
		SessionKey: sessionKey(token),
	})
}

func TestSessionStore_SameKeySameSession(t *testing.T) {
	st := newTestStore(t)
	a := st.get(sessionCtx("alice"))
	b := st.get(sessionCtx("alice"))
	c := st.get(sessionCtx("bob"))

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Same(t, st.chat(sessionCtx("alice")), st.chat(sessionCtx("alice")))
	assert.Equal(t, 2, st.count())
}

func TestSessionStore_SweepDropsIdle(t *testing.T) {
	st := newTestStore(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }

	st.get(sessionCtx("idle"))
	now = now.Add(45 * time.Second)
	st.get(sessionCtx("busy"))
	now = now.Add(30 * time.Second)

	assert.Equal(t, 1, st.sweep())
	assert.Equal(t, 1, st.count())
	assert.Equal(t, 0, st.sweep())
}

func TestSessionStore_DropResetsChat(t *testing.T) {
	st := newTestStore(t)
	ctx := sessionCtx("alice")
	first := st.chat(ctx)
	first.Close()

	st.drop(sessionKey("alice"))
	assert.NotSame(t, first, st.chat(ctx))
}

func TestSessionStore_ConcurrentAccess(t *testing.T) {
	st := newTestStore(t)

	const workers = 16
	const rounds = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				ctx := sessionCtx(fmt.Sprintf("user-%d", (w+i)%8))
				s := st.get(ctx)
				assert.NotNil(t, s.fetcher)
				_, _ = s.starred.Toggle(ctx, "f1")
				st.chat(ctx).Snapshot()
				if i%10 == 0 {
					st.drop(sessionKey(fmt.Sprintf("user-%d", w%8)))
				}
				if i%17 == 0 {
					st.sweep()
				}
			}
		}(w)
	}
	wg.Wait()

	assert.LessOrEqual(t, st.count(), 8)
	st.closeAll()
	assert.Equal(t, 0, st.count())
}
