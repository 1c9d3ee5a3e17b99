package ranking

import (
	"math"
	"strings"
)

const (
	// DefaultSkillThreshold is the minimum similarity for a skill to count as matched.
	DefaultSkillThreshold = 0.8

	skillWeight      = 0.7
	experienceWeight = 0.3
)

// SkillSimilarity scores two normalized skill names in [0, 1].
type SkillSimilarity func(a, b string) float64

// SkillMatch records which candidate skill satisfied a required skill.
type SkillMatch struct {
	Required  string  `json:"required"`
	Candidate string  `json:"candidate"`
	Score     float64 `json:"score"`
}

// NormalizeSkill trims and lowercases a skill name.
func NormalizeSkill(skill string) string {
	return strings.ToLower(strings.TrimSpace(skill))
}

// ExactSkillSimilarity scores 1 for identical normalized skills and 0 otherwise.
func ExactSkillSimilarity(a, b string) float64 {
	if NormalizeSkill(a) == NormalizeSkill(b) {
		return 1
	}
	return 0
}

// SkillMatchScore returns the share of required skills covered by the
// candidate. Each candidate skill can satisfy at most one required skill.
func SkillMatchScore(candidateSkills, requiredSkills []string, sim SkillSimilarity, threshold float64) float64 {
	required := normalizeAll(requiredSkills)
	if len(required) == 0 {
		return 1
	}
	if sim == nil {
		sim = ExactSkillSimilarity
	}

	candidates := normalizeAll(candidateSkills)
	used := make(map[int]bool, len(candidates))

	var total float64
	for _, req := range required {
		best, bestIdx := 0.0, -1
		for i, cand := range candidates {
			if used[i] {
				continue
			}
			if s := sim(req, cand); s > best {
				best, bestIdx = s, i
			}
		}

		if best >= threshold {
			total += best
			if bestIdx != -1 {
				used[bestIdx] = true
			}
		}
	}

	return total / float64(len(required))
}

// MatchedSkills lists, for each required skill, the best candidate skill at or
// above threshold. Unlike SkillMatchScore a candidate skill may be reused.
func MatchedSkills(candidateSkills, requiredSkills []string, sim SkillSimilarity, threshold float64) []SkillMatch {
	if len(requiredSkills) == 0 || len(candidateSkills) == 0 {
		return []SkillMatch{}
	}
	if sim == nil {
		sim = ExactSkillSimilarity
	}

	candidates := normalizeAll(candidateSkills)
	matches := make([]SkillMatch, 0, len(requiredSkills))
	for _, req := range normalizeAll(requiredSkills) {
		var best *SkillMatch
		for _, cand := range candidates {
			s := sim(req, cand)
			if s >= threshold && (best == nil || s > best.Score) {
				best = &SkillMatch{Required: req, Candidate: cand, Score: s}
			}
		}
		if best != nil {
			matches = append(matches, *best)
		}
	}

	return matches
}

// ExperienceScore gives partial credit below the minimum and up to a 0.5
// bonus above it.
func ExperienceScore(candidateYears, minYears float64) float64 {
	if minYears <= 0 {
		return 1
	}
	if candidateYears < minYears {
		return math.Max(0, candidateYears/minYears)
	}

	bonus := math.Min(0.5, (candidateYears-minYears)/(minYears*2))
	return 1 + bonus
}

// CompositeScore blends skill and experience scores.
func CompositeScore(skillScore, experienceScore float64) float64 {
	return skillScore*skillWeight + experienceScore*experienceWeight
}

func normalizeAll(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if n := NormalizeSkill(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}
