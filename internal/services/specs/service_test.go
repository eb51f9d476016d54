package specs

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/bobmcallan/feedpulse/internal/common"
	"github.com/bobmcallan/feedpulse/internal/models"
)

type fakeSpecs struct {
	spec    models.Spec
	updates []models.UpdateSpecRequest
	deleted []string
}

func (f *fakeSpecs) GenerateSpec(ctx context.Context, req models.GenerateSpecRequest) (*models.GenerateSpecResponse, error) {
	return &models.GenerateSpecResponse{ID: "new", Title: req.Topic, Status: models.SpecStatusDraft}, nil
}
func (f *fakeSpecs) ListSpecs(ctx context.Context, p models.SpecListParams) (*models.PagedList[models.Spec], error) {
	return &models.PagedList[models.Spec]{Data: []models.Spec{f.spec}}, nil
}
func (f *fakeSpecs) GetSpec(ctx context.Context, id string) (*models.Spec, error) {
	s := f.spec
	return &s, nil
}
func (f *fakeSpecs) UpdateSpec(ctx context.Context, id string, req models.UpdateSpecRequest) (*models.Spec, error) {
	f.updates = append(f.updates, req)
	if req.Status != nil {
		f.spec.Status = *req.Status
	}
	s := f.spec
	return &s, nil
}
func (f *fakeSpecs) DeleteSpec(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}
func (f *fakeSpecs) RegenerateSpec(ctx context.Context, id string) (*models.Spec, error) {
	s := f.spec
	return &s, nil
}

func sampleSpec(status string) models.Spec {
	return models.Spec{
		ID: "s1", Title: "Fix  checkout\ttimeouts", Topic: "checkout", Status: status,
		PRD: "# PRD", Architecture: "# Arch", Rules: "# Rules", Plan: "# Plan",
		FeedbackCount: 12, CustomerCount: 3, TotalARR: 45000,
	}
}

func TestUpdate_ContentOnlyWhileDraft(t *testing.T) {
	f := &fakeSpecs{spec: sampleSpec(models.SpecStatusFinal)}
	s := NewService(f, common.NewSilentLogger())
	ctx := context.Background()

	_, err := s.EditSection(ctx, "s1", models.SpecSectionPRD, "new")
	assert.ErrorIs(t, err, ErrNotDraft)
	assert.Empty(t, f.updates)

	status := models.SpecStatusDraft
	spec, err := s.Update(ctx, "s1", models.UpdateSpecRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.SpecStatusDraft, spec.Status)

	_, err = s.EditSection(ctx, "s1", models.SpecSectionPRD, "new")
	require.NoError(t, err)
	require.Len(t, f.updates, 2)
	assert.Equal(t, "new", *f.updates[1].PRD)

	_, err = s.EditSection(ctx, "s1", "appendix", "x")
	assert.ErrorIs(t, err, ErrUnknownSection)
}

func TestGenerate_RequiresTopic(t *testing.T) {
	s := NewService(&fakeSpecs{}, common.NewSilentLogger())
	_, err := s.Generate(context.Background(), "  ", "")
	assert.ErrorIs(t, err, ErrEmptyTopic)

	resp, err := s.Generate(context.Background(), " churn ", "Billing")
	require.NoError(t, err)
	assert.Equal(t, "churn", resp.Title)
}

func TestArchive(t *testing.T) {
	spec := sampleSpec(models.SpecStatusDraft)
	f, err := Archive(&spec)
	require.NoError(t, err)
	assert.Equal(t, "spec-Fix-checkout-timeouts.zip", f.Name)

	zr, err := zip.NewReader(bytes.NewReader(f.Data), int64(len(f.Data)))
	require.NoError(t, err)
	var names []string
	for _, zf := range zr.File {
		names = append(names, zf.Name)
	}
	assert.Equal(t, []string{"prd.md", "architecture.md", "rules.md", "plan.md"}, names)

	rc, err := zr.File[2].Open()
	require.NoError(t, err)
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "# Rules", string(body))
}

func TestSectionFile(t *testing.T) {
	spec := sampleSpec(models.SpecStatusDraft)
	f, err := SectionFile(&spec, models.SpecSectionPlan)
	require.NoError(t, err)
	assert.Equal(t, "plan.md", f.Name)
	assert.Equal(t, "# Plan", string(f.Data))

	_, err = SectionFile(&spec, "nope")
	assert.ErrorIs(t, err, ErrUnknownSection)
}

func TestExport_FrontMatter(t *testing.T) {
	spec := sampleSpec(models.SpecStatusShared)
	area := "Checkout"
	spec.ProductArea = &area
	now := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

	f, err := Export(&spec, now)
	require.NoError(t, err)
	doc := string(f.Data)
	require.True(t, strings.HasPrefix(doc, "---\n"))

	end := strings.Index(doc[4:], "---\n")
	require.Positive(t, end)
	var fm frontMatter
	require.NoError(t, yaml.Unmarshal([]byte(doc[4:4+end]), &fm))
	assert.Equal(t, "s1", fm.ID)
	assert.Equal(t, "Checkout", fm.ProductArea)
	assert.Equal(t, models.SpecStatusShared, fm.Status)
	assert.Equal(t, "2024-03-15T09:30:00Z", fm.ExportedAt)
	assert.NotEmpty(t, fm.ExportID)

	assert.Contains(t, doc, "## Architecture\n\n# Arch\n")
}
