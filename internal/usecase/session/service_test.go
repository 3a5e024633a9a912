package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/draftzero/draftzero/internal/domain"
	domsess "github.com/draftzero/draftzero/internal/domain/session"
)

type mockRepo struct {
	sessions map[string]domsess.Session
}

func newMockRepo() *mockRepo {
	return &mockRepo{sessions: make(map[string]domsess.Session)}
}

func (m *mockRepo) Save(_ context.Context, sess *domsess.Session) error {
	m.sessions[sess.ID()] = *sess
	return nil
}

func (m *mockRepo) Get(_ context.Context, userID, sessionID string) (domsess.Session, error) {
	sess, ok := m.sessions[sessionID]
	if !ok || sess.UserID() != userID {
		return domsess.Session{}, domain.ErrSessionNotFound
	}
	return sess, nil
}

func (m *mockRepo) ListByUser(_ context.Context, userID string) ([]domsess.Session, error) {
	var out []domsess.Session
	for _, sess := range m.sessions {
		if sess.UserID() == userID {
			out = append(out, sess)
		}
	}
	return out, nil
}

func newTestService(t *testing.T) (*Service, *mockRepo) {
	t.Helper()
	repo := newMockRepo()
	svc := New(repo, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	svc.newID = func() string { return "sess-1" }
	return svc, repo
}

func TestLifecycle_StartTrackEnd(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.Start(ctx, "user-1", "doc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, seg := range []domsess.Segment{
		{Words: 100, Seconds: 300},
		{Words: 110, Seconds: 300},
		{Words: 90, Seconds: 300},
	} {
		if _, err := svc.Track(ctx, "user-1", sess.ID(), seg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	closed, err := svc.End(ctx, "user-1", sess.ID())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !closed.Closed() {
		t.Fatal("expected session closed")
	}
	// Steady rates across all-active segments score high.
	if closed.Flow() < 0.8 {
		t.Fatalf("expected high flow for steady writing, got %f", closed.Flow())
	}
}

func TestTrack_RejectsBadSegment(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sess, _ := svc.Start(ctx, "user-1", "doc-1")

	_, err := svc.Track(ctx, "user-1", sess.ID(), domsess.Segment{Words: 10, Seconds: 0})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestEnd_AlreadyClosed(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sess, _ := svc.Start(ctx, "user-1", "doc-1")
	if _, err := svc.End(ctx, "user-1", sess.ID()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.End(ctx, "user-1", sess.ID())
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput on double close, got %v", err)
	}
}

func TestTrack_WrongUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sess, _ := svc.Start(ctx, "user-1", "doc-1")

	_, err := svc.Track(ctx, "user-2", sess.ID(), domsess.Segment{Words: 10, Seconds: 60})
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
