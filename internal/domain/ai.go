package domain

import (
	"context"
	"sync"
)

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// Explainer produces a short natural-language "common thread" between two texts.
type Explainer interface {
	Explain(ctx context.Context, first, second string) (ExplanationResult, error)
}

// HealthChecker verifies AI provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// ExplanationResult carries the generated explanation and token usage.
type ExplanationResult struct {
	Explanation string
	TotalTokens int
}

type aiUsageKey struct{}

// AIUsage collects token usage for a single HTTP request.
// The handler puts a mutable pointer into the context before calling the service;
// the service writes after each provider call; the handler reads it for response
// headers. Writes may come from concurrent provider workers.
type AIUsage struct {
	mu          sync.Mutex
	TotalTokens int
	Calls       int
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *AIUsage) {
	u := &AIUsage{}
	return context.WithValue(ctx, aiUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *AIUsage {
	u, _ := ctx.Value(aiUsageKey{}).(*AIUsage)
	return u
}

// AddTokens records one provider call and its consumed tokens.
func (u *AIUsage) AddTokens(n int) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.TotalTokens += n
	u.Calls++
	u.mu.Unlock()
}

// Totals returns the collected token count and call count.
func (u *AIUsage) Totals() (tokens, calls int) {
	if u == nil {
		return 0, 0
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.TotalTokens, u.Calls
}
