package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSkillMatchScore(t *testing.T) {
	tests := []struct {
		name      string
		candidate []string
		required  []string
		want      float64
	}{
		{name: "no required skills", candidate: []string{"go"}, required: nil, want: 1},
		{name: "blank required skills", candidate: []string{"go"}, required: []string{" ", ""}, want: 1},
		{name: "full match ignores case", candidate: []string{"Go", " PostgreSQL "}, required: []string{"go", "postgresql"}, want: 1},
		{name: "half match", candidate: []string{"go", "docker"}, required: []string{"go", "kubernetes"}, want: 0.5},
		{name: "no candidate skills", candidate: nil, required: []string{"go"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := SkillMatchScore(tt.candidate, tt.required, nil, DefaultSkillThreshold)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestSkillMatchScore_CandidateSkillUsedOnce(t *testing.T) {
	// "golang" is close to both required skills but may only satisfy one.
	sim := func(a, b string) float64 {
		if b == "golang" {
			return 0.9
		}
		return 0
	}

	got := SkillMatchScore([]string{"golang"}, []string{"go", "go lang"}, sim, 0.8)
	assert.InDelta(t, 0.45, got, 1e-9)
}

func TestSkillMatchScore_BelowThreshold(t *testing.T) {
	sim := func(a, b string) float64 { return 0.79 }
	assert.Equal(t, 0.0, SkillMatchScore([]string{"rust"}, []string{"go"}, sim, 0.8))
}

func TestMatchedSkills(t *testing.T) {
	matches := MatchedSkills([]string{"Go", "Docker"}, []string{"go", "aws", "docker"}, nil, DefaultSkillThreshold)

	assert.Equal(t, []SkillMatch{
		{Required: "go", Candidate: "go", Score: 1},
		{Required: "docker", Candidate: "docker", Score: 1},
	}, matches)

	assert.Empty(t, MatchedSkills(nil, []string{"go"}, nil, DefaultSkillThreshold))
	assert.Empty(t, MatchedSkills([]string{"go"}, nil, nil, DefaultSkillThreshold))
}

func TestExperienceScore(t *testing.T) {
	tests := []struct {
		name      string
		candidate float64
		min       float64
		want      float64
	}{
		{name: "no minimum", candidate: 0, min: 0, want: 1},
		{name: "negative minimum", candidate: 3, min: -1, want: 1},
		{name: "below minimum", candidate: 2, min: 4, want: 0.5},
		{name: "negative candidate", candidate: -2, min: 4, want: 0},
		{name: "exact minimum", candidate: 4, min: 4, want: 1},
		{name: "small bonus", candidate: 6, min: 4, want: 1.25},
		{name: "bonus capped", candidate: 40, min: 4, want: 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, ExperienceScore(tt.candidate, tt.min), 1e-9)
		})
	}
}

func TestCompositeScore(t *testing.T) {
	assert.InDelta(t, 0.7*0.5+0.3*1.5, CompositeScore(0.5, 1.5), 1e-9)
}
