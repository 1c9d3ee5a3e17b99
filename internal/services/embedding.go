package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"
)

var ErrEmptyEmbedding = errors.New("empty embedding result")

// EmbeddingProvider maps text to a vector. Implementations must return
// vectors of the same length for every call.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

type GeminiEmbedderConfig struct {
	APIKey       string
	Model        string
	Dimension    int
	MaxAttempts  int
	InitialDelay time.Duration
}

type geminiEmbedder struct {
	client       *genai.Client
	model        string
	dimension    int
	maxAttempts  int
	initialDelay time.Duration
	log          *zap.Logger
}

func NewGeminiEmbedder(ctx context.Context, cfg GeminiEmbedderConfig, log *zap.Logger) (EmbeddingProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	return &geminiEmbedder{
		client:       client,
		model:        cfg.Model,
		dimension:    cfg.Dimension,
		maxAttempts:  cfg.MaxAttempts,
		initialDelay: cfg.InitialDelay,
		log:          log,
	}, nil
}

func (g *geminiEmbedder) Model() string {
	return g.model
}

// ~10000 tokens is the model input limit
const maxEmbedInputBytes = 40000

// truncateText cuts text to at most max bytes without splitting a rune.
func truncateText(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:runeFloor(text, max)]
}

// Embed implements EmbeddingProvider. Transient failures are retried with
// exponential backoff.
func (g *geminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	text = truncateText(text, maxEmbedInputBytes)

	var lastErr error
	delay := g.initialDelay

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		values, err := g.embedOnce(ctx, text)
		if err == nil {
			return values, nil
		}
		lastErr = err

		if attempt == g.maxAttempts {
			break
		}

		g.log.Warn("⚠️ Embedding attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", g.maxAttempts, lastErr)
}

func (g *geminiEmbedder) embedOnce(ctx context.Context, text string) ([]float32, error) {
	var cfg *genai.EmbedContentConfig
	if g.dimension > 0 {
		dim := int32(g.dimension)
		cfg = &genai.EmbedContentConfig{OutputDimensionality: &dim}
	}

	result, err := g.client.Models.EmbedContent(ctx, g.model, genai.Text(text), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, ErrEmptyEmbedding
	}

	return result.Embeddings[0].Values, nil
}

type chunkedEmbedder struct {
	base        EmbeddingProvider
	chunker     TextChunker
	maxChunk    int
	overlap     int
	concurrency int
}

// NewChunkedEmbedder wraps base so long text is embedded chunk by chunk and
// the chunk vectors are mean-pooled into one.
func NewChunkedEmbedder(base EmbeddingProvider, chunker TextChunker, maxChunk, overlap, concurrency int) EmbeddingProvider {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &chunkedEmbedder{
		base:        base,
		chunker:     chunker,
		maxChunk:    maxChunk,
		overlap:     overlap,
		concurrency: concurrency,
	}
}

func (c *chunkedEmbedder) Model() string {
	return c.base.Model()
}

func (c *chunkedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	chunks := c.chunker.ChunkText(text, c.maxChunk, c.overlap)
	if len(chunks) <= 1 {
		return c.base.Embed(ctx, text)
	}

	vectors := make([][]float32, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, chunk := range chunks {
		g.Go(func() error {
			v, err := c.base.Embed(gctx, chunk)
			if err != nil {
				return fmt.Errorf("failed to embed chunk %d: %w", i, err)
			}
			vectors[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return meanPool(vectors)
}

func meanPool(vectors [][]float32) ([]float32, error) {
	dim := len(vectors[0])
	sum := make([]float64, dim)

	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("chunk %d has dimension %d, expected %d", i, len(v), dim)
		}
		for j, x := range v {
			sum[j] += float64(x)
		}
	}

	out := make([]float32, dim)
	n := float64(len(vectors))
	for j := range sum {
		out[j] = float32(sum[j] / n)
	}
	return out, nil
}
