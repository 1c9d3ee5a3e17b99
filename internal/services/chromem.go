package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/philippgille/chromem-go"
	"go.uber.org/zap"
)

// errNoEmbeddingFunc is returned if chromem is ever asked to embed text
// itself. Every call here passes precomputed vectors.
var errNoEmbeddingFunc = errors.New("chromem store only accepts precomputed embeddings")

type chromemStore struct {
	db             *chromem.DB
	collectionName string
	log            *zap.Logger
}

// NewChromemStore returns an in-memory VectorStore.
func NewChromemStore(collectionName string, log *zap.Logger) VectorStore {
	return &chromemStore{
		db:             chromem.NewDB(),
		collectionName: collectionName,
		log:            log,
	}
}

func (s *chromemStore) embeddingFunc() chromem.EmbeddingFunc {
	return func(context.Context, string) ([]float32, error) {
		return nil, errNoEmbeddingFunc
	}
}

func (s *chromemStore) collection() (*chromem.Collection, error) {
	c, err := s.db.GetOrCreateCollection(s.collectionName, nil, s.embeddingFunc())
	if err != nil {
		return nil, fmt.Errorf("failed to get collection %s: %w", s.collectionName, err)
	}
	return c, nil
}

func (s *chromemStore) Init(ctx context.Context) error {
	if _, err := s.collection(); err != nil {
		return err
	}
	s.log.Info("✅ In-memory vector collection ready", zap.String("collection", s.collectionName))
	return nil
}

func (s *chromemStore) Upsert(ctx context.Context, id string, kind string, vector []float32, payload map[string]string) error {
	c, err := s.collection()
	if err != nil {
		return err
	}

	metadata := map[string]string{"doc_id": id, "doc_kind": kind}
	for k, v := range payload {
		metadata[k] = v
	}

	// chromem normalises in place
	embedding := make([]float32, len(vector))
	copy(embedding, vector)

	if err := c.AddDocument(ctx, chromem.Document{
		ID:        id,
		Metadata:  metadata,
		Embedding: embedding,
		Content:   kind + ":" + id,
	}); err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	return nil
}

func (s *chromemStore) Search(ctx context.Context, vector []float32, kind string, limit int) ([]SearchResult, error) {
	c, err := s.collection()
	if err != nil {
		return nil, err
	}

	// chromem rejects nResults above the document count
	count := c.Count()
	if count == 0 || limit <= 0 {
		return []SearchResult{}, nil
	}
	if limit > count {
		limit = count
	}

	var where map[string]string
	if kind != "" {
		where = map[string]string{"doc_kind": kind}
	}

	query := make([]float32, len(vector))
	copy(query, vector)

	found, err := c.QueryEmbedding(ctx, query, limit, where, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]SearchResult, 0, len(found))
	for _, r := range found {
		results = append(results, SearchResult{
			ID:      r.ID,
			Score:   r.Similarity,
			Kind:    r.Metadata["doc_kind"],
			Payload: r.Metadata,
		})
	}

	return results, nil
}

func (s *chromemStore) Delete(ctx context.Context, id string) error {
	c, err := s.collection()
	if err != nil {
		return err
	}

	if err := c.Delete(ctx, nil, nil, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}
