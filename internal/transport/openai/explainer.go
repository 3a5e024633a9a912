package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/draftzero/draftzero/internal/domain"
	"github.com/draftzero/draftzero/internal/metrics"
)

const explainSystemPrompt = "You are helping a writer see connections between their ideas. " +
	"Given two short pieces of text, describe the common thread between them " +
	"in one sentence. Answer with the sentence only."

// Explainer generates linkage explanations via chat completions.
type Explainer struct {
	client   *openai.Client
	model    string
	provider string
	logger   *zap.Logger
}

// ExplainerConfig holds the chat provider settings.
type ExplainerConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	Provider string
	Logger   *zap.Logger
}

// NewExplainer creates an OpenAI-compatible chat-completion explainer.
func NewExplainer(cfg *ExplainerConfig) *Explainer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Explainer{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// Explain implements domain.Explainer.
func (e *Explainer) Explain(ctx context.Context, first, second string) (domain.ExplanationResult, error) {
	req := openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: explainSystemPrompt},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Idea one:\n%s\n\nIdea two:\n%s", first, second),
			},
		},
		MaxTokens:   120,
		Temperature: 0.4,
	}

	start := time.Now()

	resp, err := e.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.AIRequestsTotal.WithLabelValues(e.provider, e.model, "explanation", "error").Inc()
		metrics.AIErrorsTotal.WithLabelValues(e.provider, e.model, "explanation", "api_error").Inc()
		return domain.ExplanationResult{}, parseAPIError("explanation", err)
	}

	if len(resp.Choices) == 0 {
		metrics.AIRequestsTotal.WithLabelValues(e.provider, e.model, "explanation", "error").Inc()
		metrics.AIErrorsTotal.WithLabelValues(e.provider, e.model, "explanation", "empty_response").Inc()
		return domain.ExplanationResult{}, fmt.Errorf("empty completion response: %w", domain.ErrAIProviderError)
	}

	metrics.AIRequestsTotal.WithLabelValues(e.provider, e.model, "explanation", "success").Inc()
	metrics.AIRequestDuration.WithLabelValues(e.provider, e.model, "explanation").Observe(duration.Seconds())

	totalTokens := resp.Usage.TotalTokens
	if totalTokens > 0 {
		metrics.AITokensTotal.WithLabelValues(e.provider, e.model, "explanation").Add(float64(totalTokens))
	}
	if usage := domain.UsageFromContext(ctx); usage != nil {
		usage.AddTokens(totalTokens)
	}

	return domain.ExplanationResult{
		Explanation: strings.TrimSpace(resp.Choices[0].Message.Content),
		TotalTokens: totalTokens,
	}, nil
}
