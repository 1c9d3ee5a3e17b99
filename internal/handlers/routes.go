package handlers

import "github.com/gofiber/fiber/v2"

type Handlers struct {
	Upload    *UploadHandler
	Document  *DocumentHandler
	Candidate *CandidateHandler
	Job       *JobHandler
	Ranking   *RankingHandler
}

// Register mounts every API route on router, normally the /api/v1 group.
func (h *Handlers) Register(router fiber.Router) {
	router.Post("/upload", h.Upload.HandleUpload)
	router.Get("/documents/:id", h.Document.HandleGetDocument)

	router.Get("/candidates", h.Candidate.HandleList)
	router.Get("/candidates/:id", h.Candidate.HandleGet)
	router.Put("/candidates/:id", h.Candidate.HandleUpdate)
	router.Delete("/candidates/:id", h.Candidate.HandleDelete)

	router.Post("/jobs", h.Job.HandleCreate)
	router.Get("/jobs", h.Job.HandleList)
	router.Get("/jobs/:id", h.Job.HandleGet)
	router.Get("/jobs/:id/ranking", h.Ranking.HandleRankJob)
	router.Get("/jobs/:id/shortlist", h.Ranking.HandleShortlist)

	router.Post("/rank", h.Ranking.HandleRankVectors)
}
