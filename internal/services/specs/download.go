package specs

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/bobmcallan/feedpulse/internal/models"
)

var whitespace = regexp.MustCompile(`\s+`)

// File is a named download.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// SectionFile returns one section as <section>.md.
func SectionFile(spec *models.Spec, section string) (*File, error) {
	content, ok := spec.Section(section)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSection, section)
	}
	return &File{
		Name:        section + ".md",
		ContentType: "text/markdown; charset=utf-8",
		Data:        []byte(content),
	}, nil
}

// ArchiveName is spec-<title>.zip with whitespace runs replaced by dashes.
func ArchiveName(title string) string {
	return "spec-" + whitespace.ReplaceAllString(title, "-") + ".zip"
}

// Archive zips the four sections as prd.md, architecture.md, rules.md and plan.md.
func Archive(spec *models.Spec) (*File, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, section := range models.SpecSections {
		content, _ := spec.Section(section)
		w, err := zw.Create(section + ".md")
		if err != nil {
			return nil, fmt.Errorf("failed to add %s.md: %w", section, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			return nil, fmt.Errorf("failed to write %s.md: %w", section, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return &File{
		Name:        ArchiveName(spec.Title),
		ContentType: "application/zip",
		Data:        buf.Bytes(),
	}, nil
}

// frontMatter heads an exported spec.
type frontMatter struct {
	ExportID      string  `yaml:"export_id"`
	ID            string  `yaml:"id"`
	Title         string  `yaml:"title"`
	Topic         string  `yaml:"topic"`
	ProductArea   string  `yaml:"product_area,omitempty"`
	Status        string  `yaml:"status"`
	FeedbackCount int     `yaml:"feedback_count"`
	CustomerCount int     `yaml:"customer_count"`
	TotalARR      float64 `yaml:"total_arr"`
	CreatedAt     string  `yaml:"created_at,omitempty"`
	UpdatedAt     string  `yaml:"updated_at,omitempty"`
	ExportedAt    string  `yaml:"exported_at"`
}

var sectionTitles = map[string]string{
	models.SpecSectionPRD:          "Product Requirements",
	models.SpecSectionArchitecture: "Architecture",
	models.SpecSectionRules:        "Rules",
	models.SpecSectionPlan:         "Plan",
}

// Export renders the whole spec as one markdown document with YAML front matter.
func Export(spec *models.Spec, now time.Time) (*File, error) {
	fm := frontMatter{
		ExportID:      uuid.NewString(),
		ID:            spec.ID,
		Title:         spec.Title,
		Topic:         spec.Topic,
		Status:        spec.Status,
		FeedbackCount: spec.FeedbackCount,
		CustomerCount: spec.CustomerCount,
		TotalARR:      spec.TotalARR,
		CreatedAt:     spec.CreatedAt,
		UpdatedAt:     spec.UpdatedAt,
		ExportedAt:    now.UTC().Format(time.RFC3339),
	}
	if spec.ProductArea != nil {
		fm.ProductArea = *spec.ProductArea
	}
	head, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("failed to encode front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(head)
	buf.WriteString("---\n\n# ")
	buf.WriteString(spec.Title)
	buf.WriteString("\n")
	for _, section := range models.SpecSections {
		content, _ := spec.Section(section)
		fmt.Fprintf(&buf, "\n## %s\n\n%s\n", sectionTitles[section], content)
	}

	return &File{
		Name:        whitespace.ReplaceAllString(spec.Title, "-") + ".md",
		ContentType: "text/markdown; charset=utf-8",
		Data:        buf.Bytes(),
	}, nil
}
