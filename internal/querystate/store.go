// Package querystate holds a URL query string as the shared source of truth
// for list and dashboard state.
package querystate

import (
	"net/url"
	"sync"
)

// UpdateFunc receives a private copy of the current params and returns the next params.
type UpdateFunc func(prev url.Values) url.Values

// Store is a mutex-guarded query string. Every write goes through Update so
// that concurrent writers compose instead of overwriting each other.
type Store struct {
	mu      sync.Mutex
	values  url.Values
	version uint64
}

// New parses a raw query string ("a=1&b=2", with or without a leading "?").
func New(raw string) (*Store, error) {
	if len(raw) > 0 && raw[0] == '?' {
		raw = raw[1:]
	}
	v, err := url.ParseQuery(raw)
	if err != nil {
		return nil, err
	}
	return &Store{values: v}, nil
}

// FromValues wraps a copy of v.
func FromValues(v url.Values) *Store {
	return &Store{values: Clone(v)}
}

// Values returns a copy of the current params.
func (s *Store) Values() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Clone(s.values)
}

// Get returns the first value for key.
func (s *Store) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values.Get(key)
}

// Encode renders the params as a sorted query string.
func (s *Store) Encode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values.Encode()
}

// Version increases by one per applied update.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Update applies fn atomically and returns a copy of the result. A nil
// return from fn clears all params.
func (s *Store) Update(fn UpdateFunc) url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := fn(Clone(s.values))
	if next == nil {
		next = url.Values{}
	}
	s.values = next
	s.version++
	return Clone(next)
}

// Set writes a single key, deleting it when value is empty.
func (s *Store) Set(key, value string) url.Values {
	return s.Update(func(prev url.Values) url.Values {
		if value == "" {
			prev.Del(key)
		} else {
			prev.Set(key, value)
		}
		return prev
	})
}

// Clone deep-copies v.
func Clone(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
