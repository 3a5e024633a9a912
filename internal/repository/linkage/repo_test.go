package linkage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/draftzero/draftzero/internal/db"
	"github.com/draftzero/draftzero/internal/domain"
	domlink "github.com/draftzero/draftzero/internal/domain/linkage"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetFn func(ctx context.Context, key, path string, data []byte) error
	jsonGetFn func(ctx context.Context, key string, paths ...string) ([]byte, error)
	delFn     func(ctx context.Context, key string) error
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	return nil
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func storedEnvelope(t *testing.T, rev int, snap domlink.Snapshot) []byte {
	t.Helper()
	data, err := json.Marshal([]envelope{{Revision: rev, Snapshot: snap}})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return data
}

func TestLoad_MissingKey(t *testing.T) {
	repo := New(&mockStore{})
	ctx := context.Background()

	snap, rev, err := repo.Load(ctx, "doc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rev != 0 {
		t.Fatalf("expected revision 0, got %d", rev)
	}
	if len(snap.NodeList) != 0 || snap.Explainers == nil {
		t.Fatalf("expected empty normalized snapshot, got %+v", snap)
	}
}

func TestLoad_StaleVersionDropsNodeState(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms)
	ctx := context.Background()

	stale := domlink.Snapshot{
		Version:    1,
		NodeList:   []string{"n1"},
		Vectors:    [][]float32{{0.1}},
		NodeText:   []string{"hello"},
		Explainers: map[string]string{"k": "cached"},
	}
	ms.jsonGetFn = func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return storedEnvelope(t, 4, stale), nil
	}

	snap, rev, err := repo.Load(ctx, "doc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rev != 4 {
		t.Fatalf("expected revision 4, got %d", rev)
	}
	if len(snap.NodeList) != 0 {
		t.Fatal("expected stale node state to be dropped")
	}
	if snap.Explainers["k"] != "cached" {
		t.Fatal("expected explainer cache to survive normalization")
	}
}

func TestSave_RevisionMatch(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms)
	ctx := context.Background()

	ms.jsonGetFn = func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return storedEnvelope(t, 2, domlink.Empty()), nil
	}

	var written envelope
	ms.jsonSetFn = func(_ context.Context, key, _ string, data []byte) error {
		if key != "draftzero:linkage:doc-1" {
			t.Errorf("unexpected key: %s", key)
		}
		if err := json.Unmarshal(data, &written); err != nil {
			t.Errorf("unmarshal written envelope: %v", err)
		}
		return nil
	}

	snap := domlink.Empty()
	snap.NodeList = []string{"n1"}
	snap.Vectors = [][]float32{{0.5}}
	snap.NodeText = []string{"hello"}

	if err := repo.Save(ctx, "doc-1", snap, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if written.Revision != 3 {
		t.Fatalf("expected stored revision 3, got %d", written.Revision)
	}
	if len(written.Snapshot.NodeList) != 1 {
		t.Fatalf("expected snapshot to round-trip, got %+v", written.Snapshot)
	}
}

func TestSave_RevisionConflict(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms)
	ctx := context.Background()

	ms.jsonGetFn = func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return storedEnvelope(t, 7, domlink.Empty()), nil
	}
	ms.jsonSetFn = func(_ context.Context, _ string, _ string, _ []byte) error {
		t.Fatal("must not write on revision conflict")
		return nil
	}

	err := repo.Save(ctx, "doc-1", domlink.Empty(), 5)
	if !errors.Is(err, domain.ErrRevisionConflict) {
		t.Fatalf("expected ErrRevisionConflict, got %v", err)
	}
	var conflict *domain.RevisionConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected RevisionConflictError, got %T", err)
	}
	if conflict.CurrentRevision != 7 {
		t.Fatalf("expected current revision 7, got %d", conflict.CurrentRevision)
	}
}

func TestSave_FirstWrite(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms)
	ctx := context.Background()

	var written envelope
	ms.jsonSetFn = func(_ context.Context, _ string, _ string, data []byte) error {
		return json.Unmarshal(data, &written)
	}

	if err := repo.Save(ctx, "doc-1", domlink.Empty(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if written.Revision != 1 {
		t.Fatalf("expected first revision 1, got %d", written.Revision)
	}
}
