package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/bobmcallan/feedpulse/internal/common"
	"github.com/bobmcallan/feedpulse/internal/interfaces"
)

// StarredKey holds the starred feedback ids as a JSON array.
const StarredKey = "feedback-starred"

// Starred is the set of feedback ids the user has starred.
type Starred struct {
	kv     interfaces.KeyValueStore
	logger *common.Logger
	mu     sync.Mutex
}

// NewStarred creates a starred set over kv.
func NewStarred(kv interfaces.KeyValueStore, logger *common.Logger) *Starred {
	return &Starred{kv: kv, logger: logger}
}

// List returns the starred ids in the order they were starred. A missing or
// unreadable value is an empty set.
func (s *Starred) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Contains reports whether id is starred.
func (s *Starred) Contains(ctx context.Context, id string) (bool, error) {
	ids, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, id), nil
}

// Toggle flips id and returns whether it is now starred.
func (s *Starred) Toggle(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	if i := slices.Index(ids, id); i >= 0 {
		return false, s.save(ctx, slices.Delete(ids, i, i+1))
	}
	return true, s.save(ctx, append(ids, id))
}

// Add stars id. Starring twice is a no-op.
func (s *Starred) Add(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids, err := s.load(ctx)
	if err != nil {
		return err
	}
	if slices.Contains(ids, id) {
		return nil
	}
	return s.save(ctx, append(ids, id))
}

// Remove unstars id.
func (s *Starred) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids, err := s.load(ctx)
	if err != nil {
		return err
	}
	i := slices.Index(ids, id)
	if i < 0 {
		return nil
	}
	return s.save(ctx, slices.Delete(ids, i, i+1))
}

func (s *Starred) load(ctx context.Context) ([]string, error) {
	raw, err := s.kv.Get(ctx, StarredKey)
	if errors.Is(err, interfaces.ErrKeyNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read starred feedback: %w", err)
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		s.logger.Warn().Err(err).Msg("Discarding unreadable starred set")
		return []string{}, nil
	}
	return ids, nil
}

func (s *Starred) save(ctx context.Context, ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode starred feedback: %w", err)
	}
	if err := s.kv.Set(ctx, StarredKey, string(data)); err != nil {
		return fmt.Errorf("failed to save starred feedback: %w", err)
	}
	return nil
}
