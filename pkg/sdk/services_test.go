package draftzero

import (
	"context"
	"testing"
	"time"

	domdoc "github.com/draftzero/draftzero/internal/domain/document"
	domlink "github.com/draftzero/draftzero/internal/domain/linkage"
	domperm "github.com/draftzero/draftzero/internal/domain/permission"
	domsess "github.com/draftzero/draftzero/internal/domain/session"
	linkageuc "github.com/draftzero/draftzero/internal/usecase/linkage"
)

func TestDocumentService_Create(t *testing.T) {
	created := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	mock := &mockDocumentUseCase{
		createDocumentFn: func(ctx context.Context, userID, title string) (domdoc.Document, error) {
			if userID != "alice" {
				t.Errorf("userID: got %q, want %q", userID, "alice")
			}
			return domdoc.Reconstruct("doc-1", title, userID, created), nil
		},
	}
	svc := &DocumentService{userID: "alice", svc: mock}

	doc, err := svc.Create(context.Background(), "Novel draft")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if doc.ID != "doc-1" || doc.Title != "Novel draft" || doc.OwnerID != "alice" {
		t.Errorf("unexpected document: %+v", doc)
	}
	if !doc.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt: got %v, want %v", doc.CreatedAt, created)
	}
}

func TestDocumentService_Share_ConvertsRoles(t *testing.T) {
	var got []domperm.TypedRole
	mock := &mockDocumentUseCase{
		shareDocumentFn: func(ctx context.Context, userID, documentID, targetUserID string,
			roles []domperm.TypedRole) error {
			got = roles
			return nil
		},
	}
	svc := &DocumentService{userID: "alice", svc: mock}

	err := svc.Share(context.Background(), "doc-1", "bob", []TypedRole{
		{Role: "EDITOR", Scope: "document"},
		{Role: "REVIEWER", Scope: "document_version"},
	})
	if err != nil {
		t.Fatalf("Share failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 roles, got %d", len(got))
	}
	if got[0].Role != domperm.RoleEditor || got[0].Scope != domperm.ScopeDocument {
		t.Errorf("unexpected first role: %+v", got[0])
	}
	if got[1].Role != domperm.RoleReviewer || got[1].Scope != domperm.ScopeDocumentVersion {
		t.Errorf("unexpected second role: %+v", got[1])
	}
}

func TestLinkageService_Compute(t *testing.T) {
	mock := &mockLinkageUseCase{
		computeFn: func(ctx context.Context, userID, documentID string,
			inputs []domlink.Input, nodeIDs []string) (linkageuc.Result, error) {
			if userID != "alice" || documentID != "doc-1" {
				t.Errorf("unexpected call: user=%q doc=%q", userID, documentID)
			}
			if len(inputs) != 1 || inputs[0].NodeID != "n1" {
				t.Errorf("unexpected inputs: %+v", inputs)
			}
			return linkageuc.Result{
				NodeList:   nodeIDs,
				Similarity: [][]float64{{0.9}, {}},
				Explainers: map[string]string{"hash": "Both ideas explore home."},
			}, nil
		},
	}
	svc := &LinkageService{userID: "alice", svc: mock}

	result, err := svc.Compute(context.Background(), "doc-1",
		[]NodeInput{{NodeID: "n1", Text: "the hero returns home"}},
		[]string{"n1", "n2"},
	)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if len(result.NodeList) != 2 {
		t.Errorf("NodeList: got %v", result.NodeList)
	}
	if result.Similarity[0][0] != 0.9 {
		t.Errorf("Similarity: got %v", result.Similarity)
	}
	if result.Explainers["hash"] == "" {
		t.Errorf("Explainers not carried through: %v", result.Explainers)
	}
}

func TestSessionService_EndCarriesFlow(t *testing.T) {
	mock := &mockSessionUseCase{
		endFn: func(ctx context.Context, userID, sessionID string) (domsess.Session, error) {
			return domsess.Reconstruct(sessionID, userID, "doc-1", time.Now(),
				[]domsess.Segment{{Words: 120, Seconds: 300}}, true, 0.92), nil
		},
	}
	svc := &SessionService{userID: "alice", svc: mock}

	sess, err := svc.End(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("End failed: %v", err)
	}
	if !sess.Closed {
		t.Error("expected closed session")
	}
	if sess.Flow != 0.92 {
		t.Errorf("Flow: got %v, want 0.92", sess.Flow)
	}
	if len(sess.Segments) != 1 || sess.Segments[0].Words != 120 {
		t.Errorf("unexpected segments: %+v", sess.Segments)
	}
}
