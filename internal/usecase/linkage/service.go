// Package linkage computes idea linkage for a document: embeddings, pairwise
// similarity, and cached natural-language explanations for qualifying pairs.
package linkage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/draftzero/draftzero/internal/domain"
	domlink "github.com/draftzero/draftzero/internal/domain/linkage"
	"github.com/draftzero/draftzero/internal/metrics"
)

// saveRetries bounds optimistic-concurrency retries before the conflict is
// surfaced to the caller.
const saveRetries = 3

// Result is the computed linkage state returned to the caller.
type Result struct {
	NodeList   []string
	Similarity [][]float64
	Explainers map[string]string
}

// Config tunes the engine.
type Config struct {
	// ScoreExponent sharpens similarities before thresholding.
	ScoreExponent float64
	// ScoreThreshold is compared against the sharpened similarity.
	ScoreThreshold float64
	// MaxParallel bounds concurrent provider calls (embeds and explanations).
	MaxParallel int
	// MaxNodes bounds the working set size per document.
	MaxNodes int
}

// Service is the linkage engine.
type Service struct {
	repo      Repository
	embedder  Embedder
	explainer Explainer
	guard     Guard
	cfg       Config
	logger    *zap.Logger
}

// New creates a linkage Service. guard may be nil (unlimited mode).
func New(
	repo Repository,
	embedder Embedder,
	explainer Explainer,
	guard Guard,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:      repo,
		embedder:  embedder,
		explainer: explainer,
		guard:     guard,
		cfg:       cfg,
		logger:    logger,
	}
}

// Compute brings the document's linkage snapshot up to date and returns it.
//
// inputs carry new or changed node text; nodeIDs is the full working set in
// display order. Nodes in nodeIDs with no input and no snapshot entry are
// silently dropped. Unchanged nodes keep their stored vectors; qualifying pairs
// reuse cached explanations under either hash order. The snapshot is persisted
// with a revision check and the whole computation retries on conflict.
func (s *Service) Compute(
	ctx context.Context, userID, documentID string,
	inputs []domlink.Input, nodeIDs []string,
) (Result, error) {
	if s.cfg.MaxNodes > 0 && len(nodeIDs) > s.cfg.MaxNodes {
		return Result{}, fmt.Errorf("%w: %d nodes (max %d)", domain.ErrInvalidInput, len(nodeIDs), s.cfg.MaxNodes)
	}
	texts := make(map[string]string, len(inputs))
	for _, in := range inputs {
		if in.NodeID == "" {
			return Result{}, fmt.Errorf("%w: input with empty node ID", domain.ErrInvalidInput)
		}
		texts[in.NodeID] = in.Text
	}

	var lastErr error
	for attempt := 0; attempt < saveRetries; attempt++ {
		result, err := s.computeOnce(ctx, userID, documentID, texts, nodeIDs)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, domain.ErrRevisionConflict) {
			return Result{}, err
		}
		lastErr = err
		s.logger.Info("linkage snapshot conflict, retrying",
			zap.String("document_id", documentID),
			zap.Int("attempt", attempt+1),
		)
	}
	return Result{}, lastErr
}

func (s *Service) computeOnce(
	ctx context.Context, userID, documentID string,
	texts map[string]string, nodeIDs []string,
) (Result, error) {
	snap, revision, err := s.repo.Load(ctx, documentID)
	if err != nil {
		return Result{}, fmt.Errorf("load snapshot: %w", err)
	}

	// Working set in nodeIDs order. A node contributes if the caller supplied
	// its text or the snapshot already knows it.
	type node struct {
		id     string
		text   string
		vector []float32
	}
	nodes := make([]node, 0, len(nodeIDs))
	toEmbed := make([]int, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		text, hasInput := texts[id]
		idx := snap.IndexOf(id)
		switch {
		case hasInput && idx >= 0 && snap.NodeText[idx] == text:
			// Unchanged text keeps the stored vector.
			nodes = append(nodes, node{id: id, text: text, vector: snap.Vectors[idx]})
		case hasInput:
			nodes = append(nodes, node{id: id, text: text})
			toEmbed = append(toEmbed, len(nodes)-1)
		case idx >= 0:
			nodes = append(nodes, node{id: id, text: snap.NodeText[idx], vector: snap.Vectors[idx]})
		default:
			s.logger.Debug("dropping unknown node",
				zap.String("document_id", documentID),
				zap.String("node_id", id),
			)
		}
	}

	// Fetch missing embeddings with bounded concurrency.
	if len(toEmbed) > 0 {
		err := s.parallel(ctx, len(toEmbed), func(ctx context.Context, i int) error {
			n := &nodes[toEmbed[i]]
			if err := s.allow(ctx, userID); err != nil {
				return err
			}
			result, err := s.embedder.Embed(ctx, n.text)
			if err != nil {
				return fmt.Errorf("embed node %s: %w", n.id, err)
			}
			n.vector = result.Embedding
			return nil
		})
		if err != nil {
			return Result{}, err
		}
	}

	next := domlink.Empty()
	next.Explainers = snap.Explainers
	for _, n := range nodes {
		next.NodeList = append(next.NodeList, n.id)
		next.Vectors = append(next.Vectors, n.vector)
		next.NodeText = append(next.NodeText, n.text)
	}
	next.Similarity = domlink.Matrix(next.Vectors)

	// Explanations for qualifying pairs, cache first.
	type pair struct{ row, col int }
	var missing []pair
	for i, row := range next.Similarity {
		for offset, sim := range row {
			if !domlink.Qualifies(sim, s.cfg.ScoreExponent, s.cfg.ScoreThreshold) {
				continue
			}
			j := domlink.PairColumn(i, offset)
			if _, ok := next.LookupExplanation(next.NodeText[i], next.NodeText[j]); ok {
				metrics.ExplainerCacheTotal.WithLabelValues("hit").Inc()
				continue
			}
			metrics.ExplainerCacheTotal.WithLabelValues("miss").Inc()
			missing = append(missing, pair{row: i, col: j})
		}
	}

	if len(missing) > 0 {
		explanations := make([]string, len(missing))
		err := s.parallel(ctx, len(missing), func(ctx context.Context, i int) error {
			p := missing[i]
			if err := s.allow(ctx, userID); err != nil {
				return err
			}
			result, err := s.explainer.Explain(ctx, next.NodeText[p.row], next.NodeText[p.col])
			if err != nil {
				return fmt.Errorf("explain pair %s/%s: %w",
					next.NodeList[p.row], next.NodeList[p.col], err)
			}
			explanations[i] = result.Explanation
			return nil
		})
		if err != nil {
			return Result{}, err
		}
		for i, p := range missing {
			next.Explainers[domlink.PairKey(next.NodeText[p.row], next.NodeText[p.col])] = explanations[i]
		}
	}

	if err := s.repo.Save(ctx, documentID, next, revision); err != nil {
		return Result{}, err
	}

	s.logger.Info("linkage computed",
		zap.String("document_id", documentID),
		zap.Int("nodes", len(next.NodeList)),
		zap.Int("embedded", len(toEmbed)),
		zap.Int("explained", len(missing)),
	)

	return Result{
		NodeList:   next.NodeList,
		Similarity: next.Similarity,
		Explainers: next.Explainers,
	}, nil
}

func (s *Service) allow(ctx context.Context, userID string) error {
	if s.guard == nil {
		return nil
	}
	return s.guard.Allow(ctx, userID)
}

// parallel runs fn for indexes [0, n) on at most cfg.MaxParallel goroutines.
// The first error wins; remaining work still drains before return.
func (s *Service) parallel(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	sem := make(chan struct{}, s.cfg.MaxParallel)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i := 0; i < n; i++ {
		mu.Lock()
		failed := firstErr != nil
		mu.Unlock()
		if failed {
			break
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := fn(ctx, i); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(i)
	}

	wg.Wait()
	return firstErr
}
