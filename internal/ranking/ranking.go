// Package ranking orders candidate profiles against a job description by
// cosine similarity of their embeddings.
package ranking

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Tolerance is the score distance under which two candidates count as tied.
// Tied candidates keep their input order.
const Tolerance = 1e-9

var (
	// ErrEmptyInput is returned when there are no candidates to rank.
	ErrEmptyInput = errors.New("no candidates to rank")

	// ErrDimensionMismatch is matched by every *DimensionMismatchError.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// DimensionMismatchError reports the first candidate whose embedding length
// differs from the job embedding.
type DimensionMismatchError struct {
	CandidateID string
	Index       int
	Expected    int
	Got         int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: candidate %q (index %d) has %d dimensions, job has %d",
		ErrDimensionMismatch, e.CandidateID, e.Index, e.Got, e.Expected)
}

func (e *DimensionMismatchError) Is(target error) bool {
	return target == ErrDimensionMismatch
}

// Candidate is a single ranking input.
type Candidate struct {
	ID        string
	Embedding []float32
}

// Score pairs a candidate identifier with its similarity to the job.
type Score struct {
	CandidateID string  `json:"candidate_id"`
	Score       float64 `json:"score"`
}

// Rank scores every candidate against job and returns them ordered by
// descending cosine similarity. The output has one entry per candidate.
func Rank(job []float32, candidates []Candidate) ([]Score, error) {
	if len(candidates) == 0 {
		return nil, ErrEmptyInput
	}

	for i, c := range candidates {
		if len(c.Embedding) != len(job) {
			return nil, &DimensionMismatchError{
				CandidateID: c.ID,
				Index:       i,
				Expected:    len(job),
				Got:         len(c.Embedding),
			}
		}
	}

	jobNorm := norm(job)
	scores := make([]Score, len(candidates))
	for i, c := range candidates {
		scores[i] = Score{CandidateID: c.ID, Score: cosine(job, c.Embedding, jobNorm, norm(c.Embedding))}
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]].Score > scores[order[b]].Score
	})
	restoreTies(order, scores)

	ranked := make([]Score, len(order))
	for i, idx := range order {
		ranked[i] = scores[idx]
	}

	return ranked, nil
}

// CosineSimilarity returns the cosine of the angle between a and b.
// Vectors of different length or with a zero norm score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	return cosine(a, b, norm(a), norm(b))
}

func cosine(a, b []float32, normA, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}

	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}

	s := dot / (normA * normB)
	switch {
	case math.IsNaN(s):
		return 0
	case s > 1:
		return 1
	case s < -1:
		return -1
	}
	return s
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// restoreTies walks order, already sorted by descending score, and puts each
// run of entries within Tolerance of the run's first score back into input
// order. Anchoring on the first score keeps every pair inside a run tied.
func restoreTies(order []int, scores []Score) {
	for start := 0; start < len(order); {
		top := scores[order[start]].Score
		end := start + 1
		for end < len(order) && top-scores[order[end]].Score <= Tolerance {
			end++
		}
		if end-start > 1 {
			sort.Ints(order[start:end])
		}
		start = end
	}
}
