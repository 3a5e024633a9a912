package linkage

import (
	"context"

	"github.com/draftzero/draftzero/internal/domain"
	domlink "github.com/draftzero/draftzero/internal/domain/linkage"
)

// Repository defines the storage contract for linkage snapshots.
type Repository interface {
	Load(ctx context.Context, documentID string) (domlink.Snapshot, int, error)
	Save(ctx context.Context, documentID string, snap domlink.Snapshot, expectedRevision int) error
}

// Embedder vectorizes node text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Explainer produces a short "common thread" between two node texts.
type Explainer interface {
	Explain(ctx context.Context, first, second string) (domain.ExplanationResult, error)
}

// Guard consumes one unit of the caller's AI budget per provider call.
type Guard interface {
	Allow(ctx context.Context, userID string) error
}
