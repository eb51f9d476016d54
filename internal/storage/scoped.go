package storage

import (
	"context"

	"github.com/bobmcallan/feedpulse/internal/interfaces"
)

// Scoped namespaces every key of a shared store under a prefix, so one
// backend can hold state for many sessions. Close is a no-op: the parent
// store is owned by whoever created it.
type Scoped struct {
	parent interfaces.KeyValueStore
	prefix string
}

var _ interfaces.KeyValueStore = (*Scoped)(nil)

// NewScoped wraps parent with keys prefixed by scope + ":".
func NewScoped(parent interfaces.KeyValueStore, scope string) *Scoped {
	return &Scoped{parent: parent, prefix: scope + ":"}
}

func (s *Scoped) Get(ctx context.Context, key string) (string, error) {
	return s.parent.Get(ctx, s.prefix+key)
}

func (s *Scoped) Set(ctx context.Context, key, value string) error {
	return s.parent.Set(ctx, s.prefix+key, value)
}

func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.parent.Delete(ctx, s.prefix+key)
}

func (s *Scoped) Close() error { return nil }
