package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/feedpulse/internal/client"
	"github.com/bobmcallan/feedpulse/internal/common"
	"github.com/bobmcallan/feedpulse/internal/models"
)

type fakeProduct struct {
	completed bool
	statusErr error
	saved     map[string]any
	wizard    map[string]json.RawMessage
}

func (f *fakeProduct) OnboardingStatus(ctx context.Context) (*models.OnboardingStatus, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return &models.OnboardingStatus{Completed: f.completed, TotalSections: len(models.WizardSections)}, nil
}
func (f *fakeProduct) CompleteOnboarding(ctx context.Context) (bool, error) {
	f.completed = true
	return true, nil
}
func (f *fakeProduct) Wizard(ctx context.Context) (*models.WizardAll, error) {
	return &models.WizardAll{Data: f.wizard}, nil
}
func (f *fakeProduct) WizardSection(ctx context.Context, section string) (*models.WizardSection, error) {
	return nil, nil
}
func (f *fakeProduct) PutWizardSection(ctx context.Context, section string, data any) error {
	if f.saved == nil {
		f.saved = map[string]any{}
	}
	f.saved[section] = data
	return nil
}
func (f *fakeProduct) DeleteWizardSection(ctx context.Context, section string) error {
	delete(f.saved, section)
	return nil
}
func (f *fakeProduct) ProductContext(ctx context.Context) (*models.ProductContext, error) {
	return &models.ProductContext{ProductName: "Pulse"}, nil
}

func TestGuard(t *testing.T) {
	ctx := context.Background()
	api := &fakeProduct{}
	s := NewService(api, common.NewSilentLogger())

	assert.Equal(t, "/login", s.Guard(ctx, false))
	assert.Equal(t, "/onboarding", s.Guard(ctx, true))

	st, err := s.Complete(ctx)
	require.NoError(t, err)
	assert.True(t, st.Completed)
	assert.Equal(t, "", s.Guard(ctx, true))

	api.statusErr = errors.New("down")
	assert.Equal(t, "", s.Guard(ctx, true))
}

func TestSaveSection_Validation(t *testing.T) {
	ctx := context.Background()
	api := &fakeProduct{}
	s := NewService(api, common.NewSilentLogger())

	err := s.SaveSection(ctx, "basics", json.RawMessage(`{"description":"no name"}`))
	assert.ErrorIs(t, err, client.ErrValidation)

	err = s.SaveSection(ctx, "areas", json.RawMessage(`{"areas":[{"name":""}]}`))
	assert.ErrorIs(t, err, client.ErrValidation)

	err = s.SaveSection(ctx, "goals", json.RawMessage(`{not json`))
	assert.ErrorIs(t, err, client.ErrValidation)

	err = s.SaveSection(ctx, "pricing", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrUnknownSection)
	assert.Empty(t, api.saved)

	require.NoError(t, s.SaveSection(ctx, "basics", json.RawMessage(`{"product_name":"Pulse"}`)))
	require.NoError(t, s.SaveSection(ctx, "goals", json.RawMessage(`{"goals":[]}`)))
	assert.Len(t, api.saved, 2)

	require.NoError(t, s.ClearSection(ctx, "goals"))
	assert.Len(t, api.saved, 1)
}

func TestSection_UnsavedIsNil(t *testing.T) {
	s := NewService(&fakeProduct{}, common.NewSilentLogger())
	ws, err := s.Section(context.Background(), "roadmap")
	require.NoError(t, err)
	assert.Nil(t, ws)
}

func TestOptions(t *testing.T) {
	api := &fakeProduct{wizard: map[string]json.RawMessage{
		"areas":    json.RawMessage(`{"areas":[{"name":"Checkout"},{"name":"Search"},{"name":"Checkout"}]}`),
		"segments": json.RawMessage(`{"segments":[{"name":"Enterprise"},{"name":""},{"name":"SMB"}]}`),
	}}
	s := NewService(api, common.NewSilentLogger())
	opts := s.Options(context.Background())
	assert.Equal(t, []string{"Checkout", "Search"}, opts.Areas)
	assert.Equal(t, []string{"Enterprise", "SMB"}, opts.Segments)
}
