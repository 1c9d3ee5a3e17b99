package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type JobDescription struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title          string    `gorm:"type:text;not null" json:"title" validate:"required,max=100"`
	Description    string    `gorm:"type:text" json:"description"`
	RequiredSkills []string  `gorm:"serializer:json;type:jsonb" json:"required_skills"`
	MinExperience  float64   `gorm:"default:0" json:"min_experience" validate:"gte=0"`
	Embedding      []float32 `gorm:"serializer:json;type:jsonb" json:"-"`
	EmbeddingModel string    `gorm:"type:text;index" json:"embedding_model,omitempty"`
	CreatedAt      time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt      time.Time `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (JobDescription) TableName() string {
	return "job_descriptions"
}

type JobInput struct {
	Title          string
	Description    string
	RequiredSkills []string
	MinExperience  float64
}

// NewJobDescription lowercases required skills, drops blanks and validates.
func NewJobDescription(in JobInput) (*JobDescription, error) {
	skills := make([]string, 0, len(in.RequiredSkills))
	for _, s := range in.RequiredSkills {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			skills = append(skills, s)
		}
	}

	now := time.Now()
	job := &JobDescription{
		ID:             uuid.New(),
		Title:          strings.TrimSpace(in.Title),
		Description:    strings.TrimSpace(in.Description),
		RequiredSkills: skills,
		MinExperience:  in.MinExperience,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := validate.Struct(job); err != nil {
		return nil, fmt.Errorf("invalid job description: %w", err)
	}
	return job, nil
}

func (j *JobDescription) ProfileText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Job title: %s\n", j.Title)
	fmt.Fprintf(&b, "Required skills: %s\n", strings.Join(j.RequiredSkills, ", "))
	fmt.Fprintf(&b, "Minimum experience: %.1f years\n", j.MinExperience)
	if j.Description != "" {
		b.WriteString(j.Description)
	}
	return strings.TrimSpace(b.String())
}

func (j *JobDescription) HasEmbedding() bool {
	return len(j.Embedding) > 0
}
