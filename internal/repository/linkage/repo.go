// Package linkage persists the per-document linkage snapshot under an
// optimistic revision counter.
package linkage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/draftzero/draftzero/internal/db"
	"github.com/draftzero/draftzero/internal/domain"
	domlink "github.com/draftzero/draftzero/internal/domain/linkage"
)

// store is the consumer interface for snapshots (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
}

// envelope wraps the snapshot with its revision for optimistic concurrency.
type envelope struct {
	Revision int              `json:"revision"`
	Snapshot domlink.Snapshot `json:"snapshot"`
}

// Repo implements the linkage usecase's Repository.
type Repo struct {
	store store
}

// New creates a linkage snapshot repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Load returns the stored snapshot and its revision. A missing key yields an
// empty snapshot at revision 0; the snapshot is normalized before return, so
// callers never see a stale-version or inconsistent blob.
func (r *Repo) Load(ctx context.Context, documentID string) (domlink.Snapshot, int, error) {
	key := snapshotKey(documentID)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domlink.Empty(), 0, nil
		}
		return domlink.Snapshot{}, 0, fmt.Errorf("json.get %s: %w", key, err)
	}

	var wrapper []envelope
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return domlink.Snapshot{}, 0, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	if len(wrapper) == 0 {
		return domlink.Empty(), 0, nil
	}

	env := wrapper[0]
	return env.Snapshot.Normalize(), env.Revision, nil
}

// Save writes the snapshot if the stored revision still equals expectedRevision.
// On mismatch it returns RevisionConflictError carrying the current revision so
// the caller can reload and retry.
func (r *Repo) Save(ctx context.Context, documentID string, snap domlink.Snapshot, expectedRevision int) error {
	key := snapshotKey(documentID)

	_, current, err := r.Load(ctx, documentID)
	if err != nil {
		return err
	}
	if current != expectedRevision {
		return &domain.RevisionConflictError{CurrentRevision: current}
	}

	data, err := json.Marshal(envelope{Revision: expectedRevision + 1, Snapshot: snap})
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

// Delete drops the snapshot. Used when the document is deleted.
func (r *Repo) Delete(ctx context.Context, documentID string) error {
	key := snapshotKey(documentID)
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

func snapshotKey(documentID string) string {
	return fmt.Sprintf("%slinkage:%s", domain.KeyPrefix, documentID)
}
