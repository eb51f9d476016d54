// Package specs manages generated spec documents: listing, editing under the
// draft rule, status changes and downloads.
package specs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bobmcallan/feedpulse/internal/common"
	"github.com/bobmcallan/feedpulse/internal/interfaces"
	"github.com/bobmcallan/feedpulse/internal/models"
)

var (
	ErrNotDraft       = errors.New("only draft specs can be edited")
	ErrUnknownSection = errors.New("unknown spec section")
	ErrEmptyTopic     = errors.New("topic is required")
)

// Service wraps the specs API with the editing rules.
type Service struct {
	api    interfaces.SpecsAPI
	logger *common.Logger
}

// NewService creates a new specs service
func NewService(api interfaces.SpecsAPI, logger *common.Logger) *Service {
	return &Service{api: api, logger: logger}
}

// List returns one page of specs.
func (s *Service) List(ctx context.Context, params models.SpecListParams) (*models.PagedList[models.Spec], error) {
	list, err := s.api.ListSpecs(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list specs: %w", err)
	}
	return list, nil
}

// Get returns one spec with all sections.
func (s *Service) Get(ctx context.Context, id string) (*models.Spec, error) {
	spec, err := s.api.GetSpec(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get spec %s: %w", id, err)
	}
	return spec, nil
}

// Generate asks the API to write a spec about topic.
func (s *Service) Generate(ctx context.Context, topic, productArea string) (*models.GenerateSpecResponse, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrEmptyTopic
	}
	resp, err := s.api.GenerateSpec(ctx, models.GenerateSpecRequest{Topic: topic, ProductArea: strings.TrimSpace(productArea)})
	if err != nil {
		return nil, fmt.Errorf("failed to generate spec: %w", err)
	}
	s.logger.Info().Str("spec_id", resp.ID).Str("topic", topic).Msg("Spec generated")
	return resp, nil
}

// Update applies an edit. Content and title edits require the spec to be a
// draft; a status change alone is always allowed.
func (s *Service) Update(ctx context.Context, id string, req models.UpdateSpecRequest) (*models.Spec, error) {
	if req.EditsContent() {
		current, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.Status != models.SpecStatusDraft {
			return nil, fmt.Errorf("%w: %s is %s", ErrNotDraft, id, current.Status)
		}
	}
	spec, err := s.api.UpdateSpec(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update spec %s: %w", id, err)
	}
	return spec, nil
}

// EditSection replaces one section's content of a draft spec.
func (s *Service) EditSection(ctx context.Context, id, section, content string) (*models.Spec, error) {
	req := models.UpdateSpecRequest{}
	switch section {
	case models.SpecSectionPRD:
		req.PRD = &content
	case models.SpecSectionArchitecture:
		req.Architecture = &content
	case models.SpecSectionRules:
		req.Rules = &content
	case models.SpecSectionPlan:
		req.Plan = &content
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSection, section)
	}
	return s.Update(ctx, id, req)
}

// Delete removes a spec.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.api.DeleteSpec(ctx, id); err != nil {
		return fmt.Errorf("failed to delete spec %s: %w", id, err)
	}
	s.logger.Info().Str("spec_id", id).Msg("Spec deleted")
	return nil
}

// Regenerate rewrites a spec from current feedback.
func (s *Service) Regenerate(ctx context.Context, id string) (*models.Spec, error) {
	spec, err := s.api.RegenerateSpec(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to regenerate spec %s: %w", id, err)
	}
	return spec, nil
}
