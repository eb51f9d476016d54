// Package onboarding drives the product setup wizard and the route guard that
// sends new organisations through it.
package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bobmcallan/feedpulse/internal/client"
	"github.com/bobmcallan/feedpulse/internal/common"
	"github.com/bobmcallan/feedpulse/internal/interfaces"
	"github.com/bobmcallan/feedpulse/internal/models"
	"github.com/bobmcallan/feedpulse/internal/widgets"
)

var ErrUnknownSection = errors.New("unknown wizard section")

// Service wraps the product API.
type Service struct {
	api    interfaces.ProductAPI
	logger *common.Logger
}

// NewService creates a new onboarding service
func NewService(api interfaces.ProductAPI, logger *common.Logger) *Service {
	return &Service{api: api, logger: logger}
}

// Status returns onboarding progress.
func (s *Service) Status(ctx context.Context) (*models.OnboardingStatus, error) {
	st, err := s.api.OnboardingStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get onboarding status: %w", err)
	}
	return st, nil
}

// Wizard returns every saved section.
func (s *Service) Wizard(ctx context.Context) (*models.WizardAll, error) {
	w, err := s.api.Wizard(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get wizard: %w", err)
	}
	return w, nil
}

// Section returns one section, or nil when it has not been saved yet.
func (s *Service) Section(ctx context.Context, section string) (*models.WizardSection, error) {
	if !models.ValidWizardSection(section) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSection, section)
	}
	ws, err := s.api.WizardSection(ctx, section)
	if err != nil {
		return nil, fmt.Errorf("failed to get wizard section %s: %w", section, err)
	}
	return ws, nil
}

// SaveSection validates and stores one section. The basics and areas steps
// have required fields; other sections are stored as given.
func (s *Service) SaveSection(ctx context.Context, section string, data json.RawMessage) error {
	if !models.ValidWizardSection(section) {
		return fmt.Errorf("%w: %s", ErrUnknownSection, section)
	}
	if !json.Valid(data) {
		return fmt.Errorf("%w: section %s is not valid JSON", client.ErrValidation, section)
	}
	if err := validateSection(section, data); err != nil {
		return err
	}
	if err := s.api.PutWizardSection(ctx, section, data); err != nil {
		return fmt.Errorf("failed to save wizard section %s: %w", section, err)
	}
	s.logger.Info().Str("section", section).Msg("Wizard section saved")
	return nil
}

func validateSection(section string, data json.RawMessage) error {
	var target any
	switch section {
	case "basics":
		target = &models.ProductBasics{}
	case "areas":
		target = &models.ProductAreas{}
	default:
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %s: %v", client.ErrValidation, section, err)
	}
	return client.Validate(target)
}

// ClearSection deletes one section.
func (s *Service) ClearSection(ctx context.Context, section string) error {
	if !models.ValidWizardSection(section) {
		return fmt.Errorf("%w: %s", ErrUnknownSection, section)
	}
	if err := s.api.DeleteWizardSection(ctx, section); err != nil {
		return fmt.Errorf("failed to clear wizard section %s: %w", section, err)
	}
	return nil
}

// Complete marks onboarding done and returns the refreshed status.
func (s *Service) Complete(ctx context.Context) (*models.OnboardingStatus, error) {
	if _, err := s.api.CompleteOnboarding(ctx); err != nil {
		return nil, fmt.Errorf("failed to complete onboarding: %w", err)
	}
	return s.Status(ctx)
}

// Context returns the product context handed to the agent.
func (s *Service) Context(ctx context.Context) (*models.ProductContext, error) {
	pc, err := s.api.ProductContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get product context: %w", err)
	}
	return pc, nil
}

// FilterOptions are the configured area and segment names offered by the
// feedback filters.
type FilterOptions struct {
	Areas    []string `json:"areas"`
	Segments []string `json:"segments"`
}

// Options reads the filter choices from the wizard. A failed read yields
// empty lists.
func (s *Service) Options(ctx context.Context) FilterOptions {
	opts := FilterOptions{Areas: []string{}, Segments: []string{}}
	w, err := s.api.Wizard(ctx)
	if err != nil {
		s.logger.Debug().Err(err).Msg("Wizard unavailable for filter options")
		return opts
	}
	opts.Areas = dedupe(w.AreaNames())
	if raw, ok := w.Data["segments"]; ok {
		var seg struct {
			Segments []struct {
				Name string `json:"name"`
			} `json:"segments"`
		}
		if json.Unmarshal(raw, &seg) == nil {
			names := make([]string, 0, len(seg.Segments))
			for _, sg := range seg.Segments {
				if sg.Name != "" {
					names = append(names, sg.Name)
				}
			}
			opts.Segments = dedupe(names)
		}
	}
	return opts
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// Guard returns where a private route must redirect, or "" to let the
// request through. Unauthenticated callers go to login; an organisation
// that has not finished onboarding goes to the wizard. When the status
// cannot be read the route is allowed.
func (s *Service) Guard(ctx context.Context, authenticated bool) string {
	if !authenticated {
		return widgets.LoginPath
	}
	st, err := s.api.OnboardingStatus(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Onboarding status unavailable, allowing route")
		return ""
	}
	if !st.Completed {
		return widgets.OnboardPath
	}
	return ""
}
