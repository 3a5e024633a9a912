package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/draftzero/draftzero/internal/db"
	"github.com/draftzero/draftzero/internal/domain"
	domsess "github.com/draftzero/draftzero/internal/domain/session"
)

type mockStore struct {
	jsonSetFn func(ctx context.Context, key, path string, data []byte) error
	jsonGetFn func(ctx context.Context, key string, paths ...string) ([]byte, error)
	scanFn    func(ctx context.Context, pattern string) ([]string, error)
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	return m.jsonSetFn(ctx, key, path, data)
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	return m.jsonGetFn(ctx, key, paths...)
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	return m.scanFn(ctx, pattern)
}

func TestSave_WritesUserScopedKey(t *testing.T) {
	var gotKey string
	var gotData []byte
	store := &mockStore{
		jsonSetFn: func(ctx context.Context, key, path string, data []byte) error {
			gotKey = key
			gotData = data
			return nil
		},
	}
	repo := New(store)

	started := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	sess, err := domsess.New("sess-1", "alice", "doc-1", started)
	if err != nil {
		t.Fatalf("New session: %v", err)
	}
	if err := repo.Save(context.Background(), &sess); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if gotKey != "draftzero:session:alice:sess-1" {
		t.Errorf("key: got %q", gotKey)
	}

	var dto sessionDTO
	if err := json.Unmarshal(gotData, &dto); err != nil {
		t.Fatalf("unmarshal stored session: %v", err)
	}
	if dto.UserID != "alice" || dto.DocumentID != "doc-1" || dto.Closed {
		t.Errorf("unexpected dto: %+v", dto)
	}
}

func TestGet_RoundTrip(t *testing.T) {
	stored := `[{"id":"sess-1","userId":"alice","documentId":"doc-1",` +
		`"startedAt":"2026-03-01T09:30:00Z",` +
		`"segments":[{"words":120,"seconds":300}],"closed":true,"flow":0.92}]`
	store := &mockStore{
		jsonGetFn: func(ctx context.Context, key string, paths ...string) ([]byte, error) {
			if key != "draftzero:session:alice:sess-1" {
				t.Errorf("unexpected key: %s", key)
			}
			return []byte(stored), nil
		},
	}
	repo := New(store)

	sess, err := repo.Get(context.Background(), "alice", "sess-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if sess.ID() != "sess-1" || !sess.Closed() || sess.Flow() != 0.92 {
		t.Errorf("unexpected session: id=%s closed=%v flow=%v", sess.ID(), sess.Closed(), sess.Flow())
	}
	if len(sess.Segments()) != 1 || sess.Segments()[0].Words != 120 {
		t.Errorf("unexpected segments: %+v", sess.Segments())
	}
}

func TestGet_Missing(t *testing.T) {
	store := &mockStore{
		jsonGetFn: func(ctx context.Context, key string, paths ...string) ([]byte, error) {
			return nil, db.ErrKeyNotFound
		},
	}
	repo := New(store)

	_, err := repo.Get(context.Background(), "alice", "gone")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestListByUser_ScansUserPrefix(t *testing.T) {
	payloads := map[string]string{
		"draftzero:session:alice:s1": `[{"id":"s1","userId":"alice","documentId":"doc-1","startedAt":"2026-03-01T09:00:00Z"}]`,
		"draftzero:session:alice:s2": `[{"id":"s2","userId":"alice","documentId":"doc-2","startedAt":"2026-03-01T10:00:00Z"}]`,
	}
	store := &mockStore{
		scanFn: func(ctx context.Context, pattern string) ([]string, error) {
			if pattern != "draftzero:session:alice:*" {
				t.Errorf("unexpected pattern: %s", pattern)
			}
			return []string{"draftzero:session:alice:s1", "draftzero:session:alice:s2"}, nil
		},
		jsonGetFn: func(ctx context.Context, key string, paths ...string) ([]byte, error) {
			return []byte(payloads[key]), nil
		},
	}
	repo := New(store)

	sessions, err := repo.ListByUser(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].ID() != "s1" || sessions[1].DocumentID() != "doc-2" {
		t.Errorf("unexpected sessions: %v, %v", sessions[0].ID(), sessions[1].ID())
	}
}

func TestListByUser_SkipsVanishedKeys(t *testing.T) {
	store := &mockStore{
		scanFn: func(ctx context.Context, pattern string) ([]string, error) {
			return []string{"draftzero:session:alice:s1", "draftzero:session:alice:s2"}, nil
		},
		jsonGetFn: func(ctx context.Context, key string, paths ...string) ([]byte, error) {
			if key == "draftzero:session:alice:s1" {
				return nil, db.ErrKeyNotFound
			}
			return []byte(`[{"id":"s2","userId":"alice","documentId":"doc-2","startedAt":"2026-03-01T10:00:00Z"}]`), nil
		},
	}
	repo := New(store)

	sessions, err := repo.ListByUser(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID() != "s2" {
		t.Errorf("expected only surviving session, got %v", sessions)
	}
}
