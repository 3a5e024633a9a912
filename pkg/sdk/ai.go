package draftzero

import (
	"context"
	"fmt"

	"github.com/draftzero/draftzero/internal/domain"
)

// EmbeddingResult is the outcome of one embedding call.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// ExplanationResult is the outcome of one explanation call.
type ExplanationResult struct {
	Explanation string
	TotalTokens int
}

// Embedder turns text into a vector. Implementations typically wrap an
// OpenAI-compatible embeddings API.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// Explainer describes the common thread between two texts in one sentence.
type Explainer interface {
	Explain(ctx context.Context, first, second string) (ExplanationResult, error)
}

// embedderAdapter wraps the public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// explainerAdapter wraps the public Explainer to satisfy internal domain.Explainer.
type explainerAdapter struct {
	inner Explainer
}

func (a *explainerAdapter) Explain(ctx context.Context, first, second string) (domain.ExplanationResult, error) {
	r, err := a.inner.Explain(ctx, first, second)
	if err != nil {
		return domain.ExplanationResult{}, fmt.Errorf("explain: %w", err)
	}
	return domain.ExplanationResult{
		Explanation: r.Explanation,
		TotalTokens: r.TotalTokens,
	}, nil
}

// noopEmbedder fails every call. Installed when no embedder is configured so
// document operations work but linkage computation reports a clear error.
type noopEmbedder struct{}

func (n *noopEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{},
		fmt.Errorf("no embedder configured (use WithEmbedder): %w", domain.ErrAIProviderError)
}

// noopExplainer fails every call.
type noopExplainer struct{}

func (n *noopExplainer) Explain(context.Context, string, string) (domain.ExplanationResult, error) {
	return domain.ExplanationResult{},
		fmt.Errorf("no explainer configured (use WithExplainer): %w", domain.ErrAIProviderError)
}
