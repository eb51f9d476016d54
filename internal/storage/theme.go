package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/bobmcallan/feedpulse/internal/interfaces"
	"github.com/bobmcallan/feedpulse/internal/models"
)

// ThemeKey holds the colour theme.
const ThemeKey = "ce_theme"

// ErrInvalidTheme is returned when setting a theme other than dark or light.
var ErrInvalidTheme = errors.New("theme must be dark or light")

// Theme persists the dark/light preference. Dark is the default.
type Theme struct {
	kv interfaces.KeyValueStore
}

// NewTheme creates a theme preference over kv.
func NewTheme(kv interfaces.KeyValueStore) *Theme {
	return &Theme{kv: kv}
}

// Get returns the stored theme, or dark when none is stored.
func (t *Theme) Get(ctx context.Context) (string, error) {
	v, err := t.kv.Get(ctx, ThemeKey)
	if errors.Is(err, interfaces.ErrKeyNotFound) {
		return models.ThemeDark, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read theme: %w", err)
	}
	if v != models.ThemeLight {
		return models.ThemeDark, nil
	}
	return v, nil
}

// Set stores theme.
func (t *Theme) Set(ctx context.Context, theme string) error {
	if theme != models.ThemeDark && theme != models.ThemeLight {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, theme)
	}
	if err := t.kv.Set(ctx, ThemeKey, theme); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	return nil
}

// Toggle switches between dark and light and returns the new theme.
func (t *Theme) Toggle(ctx context.Context) (string, error) {
	cur, err := t.Get(ctx)
	if err != nil {
		return "", err
	}
	next := models.ThemeLight
	if cur == models.ThemeLight {
		next = models.ThemeDark
	}
	return next, t.Set(ctx, next)
}
