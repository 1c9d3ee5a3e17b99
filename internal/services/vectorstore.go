package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	KindCandidate = "candidate"
	KindJob       = "job"
)

// VectorStore is the nearest-neighbour index used for shortlists. Ranking
// order is always recomputed by the ranking engine.
type VectorStore interface {
	Init(ctx context.Context) error
	Upsert(ctx context.Context, id string, kind string, vector []float32, payload map[string]string) error
	Search(ctx context.Context, vector []float32, kind string, limit int) ([]SearchResult, error)
	Delete(ctx context.Context, id string) error
}

type SearchResult struct {
	ID      string
	Score   float32
	Kind    string
	Payload map[string]string
}

type VectorStoreConfig struct {
	Driver       string
	QdrantURL    string
	QdrantAPIKey string
	Collection   string
	Dimension    int
}

// NewVectorStore picks the backend named by cfg.Driver.
func NewVectorStore(cfg VectorStoreConfig, log *zap.Logger) (VectorStore, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "qdrant":
		return NewQdrantStore(cfg.QdrantURL, cfg.QdrantAPIKey, cfg.Collection, cfg.Dimension, log)
	case "memory", "chromem":
		return NewChromemStore(cfg.Collection, log), nil
	default:
		return nil, fmt.Errorf("unknown vector store driver: %s", cfg.Driver)
	}
}
