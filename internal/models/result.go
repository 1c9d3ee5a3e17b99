package models

import "alfredoptarigan/resume-ranker/internal/ranking"

type UploadResponse struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	FileType     string `json:"file_type"`
	Status       string `json:"status"`
}

type DocumentStatusResponse struct {
	ID           string  `json:"id"`
	Status       string  `json:"status"`
	CandidateID  *string `json:"candidate_id,omitempty"`
	ErrorMessage *string `json:"error_message,omitempty"`
}

type CreateJobRequest struct {
	Title          string   `json:"title" validate:"required"`
	Description    string   `json:"description"`
	RequiredSkills []string `json:"required_skills"`
	MinExperience  float64  `json:"min_experience" validate:"gte=0"`
}

type UpdateCandidateRequest struct {
	Name            string   `json:"name" validate:"required"`
	Email           string   `json:"email" validate:"omitempty,email"`
	Phone           string   `json:"phone"`
	Skills          []string `json:"skills"`
	ExperienceYears float64  `json:"experience_years" validate:"gte=0"`
}

// Validate checks the request shape before it reaches the service layer.
func (r *CreateJobRequest) Validate() error {
	return validate.Struct(r)
}

func (r *UpdateCandidateRequest) Validate() error {
	return validate.Struct(r)
}

type RankedCandidate struct {
	Rank            int                  `json:"rank"`
	CandidateID     string               `json:"candidate_id"`
	Name            string               `json:"name"`
	Score           float64              `json:"score"`
	SkillScore      float64              `json:"skill_score"`
	ExperienceScore float64              `json:"experience_score"`
	CompositeScore  float64              `json:"composite_score"`
	MatchedSkills   []ranking.SkillMatch `json:"matched_skills"`
}

// RankingResponse is derived on demand and never stored.
type RankingResponse struct {
	JobID      string            `json:"job_id"`
	JobTitle   string            `json:"job_title"`
	Candidates []RankedCandidate `json:"candidates"`
	Message    string            `json:"message,omitempty"`
}

type ShortlistEntry struct {
	CandidateID string  `json:"candidate_id"`
	Name        string  `json:"name"`
	Score       float32 `json:"score"`
}

type ShortlistResponse struct {
	JobID      string           `json:"job_id"`
	Candidates []ShortlistEntry `json:"candidates"`
}

type RankVectorsRequest struct {
	JobEmbedding []float32          `json:"job_embedding"`
	Candidates   []VectorCandidate `json:"candidates"`
}

type VectorCandidate struct {
	ID        string    `json:"id"`
	Embedding []float32 `json:"embedding"`
}

type RankVectorsResponse struct {
	Ranking []ranking.Score `json:"ranking"`
}
