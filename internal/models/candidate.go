package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

type EducationEntry struct {
	Degree     string `json:"degree"`
	University string `json:"university"`
	Year       string `json:"year"`
}

type ExperienceEntry struct {
	Title     string `json:"title"`
	Company   string `json:"company"`
	StartYear int    `json:"start_year"`
	EndYear   string `json:"end_year"`
	Duration  int    `json:"duration"`
}

// Candidate is a parsed résumé. Build it with NewCandidate so required fields
// are checked.
type Candidate struct {
	ID                uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	DocumentID        *uuid.UUID        `gorm:"type:uuid;index" json:"document_id,omitempty"`
	Name              string            `gorm:"type:text;not null" json:"name" validate:"required,max=100"`
	Email             string            `gorm:"type:text" json:"email" validate:"omitempty,email"`
	Phone             string            `gorm:"type:text" json:"phone" validate:"max=20"`
	Skills            []string          `gorm:"serializer:json;type:jsonb" json:"skills" validate:"dive,required"`
	Education         []EducationEntry  `gorm:"serializer:json;type:jsonb" json:"education"`
	ExperienceEntries []ExperienceEntry `gorm:"serializer:json;type:jsonb" json:"experience_entries"`
	ExperienceYears   float64           `gorm:"default:0" json:"experience_years" validate:"gte=0"`
	ExperienceSummary string            `gorm:"type:text" json:"experience_summary"`
	ResumeFilename    string            `gorm:"type:text" json:"resume_filename"`
	Embedding         []float32         `gorm:"serializer:json;type:jsonb" json:"-"`
	EmbeddingModel    string            `gorm:"type:text;index" json:"embedding_model,omitempty"`
	ParsedAt          time.Time         `gorm:"type:timestamp" json:"parsed_at"`
	CreatedAt         time.Time         `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (Candidate) TableName() string {
	return "candidates"
}

type CandidateInput struct {
	DocumentID        *uuid.UUID
	Name              string
	Email             string
	Phone             string
	Skills            []string
	Education         []EducationEntry
	ExperienceEntries []ExperienceEntry
	ExperienceYears   float64
	ExperienceSummary string
	ResumeFilename    string
	ParsedAt          time.Time
}

// NewCandidate trims and validates the input and returns a candidate with a
// fresh ID. The embedding is left empty.
func NewCandidate(in CandidateInput) (*Candidate, error) {
	parsedAt := in.ParsedAt
	if parsedAt.IsZero() {
		parsedAt = time.Now()
	}

	c := &Candidate{
		ID:                uuid.New(),
		DocumentID:        in.DocumentID,
		Name:              strings.TrimSpace(in.Name),
		Email:             strings.TrimSpace(in.Email),
		Phone:             strings.TrimSpace(in.Phone),
		Skills:            cleanList(in.Skills),
		Education:         nonNil(in.Education),
		ExperienceEntries: nonNil(in.ExperienceEntries),
		ExperienceYears:   in.ExperienceYears,
		ExperienceSummary: strings.TrimSpace(in.ExperienceSummary),
		ResumeFilename:    in.ResumeFilename,
		ParsedAt:          parsedAt,
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Candidate) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid candidate: %w", err)
	}
	return nil
}

// ProfileText is the text embedded to represent the candidate.
func (c *Candidate) ProfileText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Skills: %s\n", strings.Join(c.Skills, ", "))

	if len(c.Education) > 0 {
		parts := make([]string, 0, len(c.Education))
		for _, e := range c.Education {
			parts = append(parts, strings.TrimSpace(strings.Join([]string{e.Degree, e.University, e.Year}, " ")))
		}
		fmt.Fprintf(&b, "Education: %s\n", strings.Join(parts, "; "))
	}

	if len(c.ExperienceEntries) > 0 {
		parts := make([]string, 0, len(c.ExperienceEntries))
		for _, e := range c.ExperienceEntries {
			parts = append(parts, fmt.Sprintf("%s at %s (%d years)", e.Title, e.Company, e.Duration))
		}
		fmt.Fprintf(&b, "Experience: %s\n", strings.Join(parts, "; "))
	}

	fmt.Fprintf(&b, "Total experience: %.1f years\n", c.ExperienceYears)
	if c.ExperienceSummary != "" {
		b.WriteString(c.ExperienceSummary)
	}

	return strings.TrimSpace(b.String())
}

// HasEmbedding reports whether the candidate can be ranked.
func (c *Candidate) HasEmbedding() bool {
	return len(c.Embedding) > 0
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
