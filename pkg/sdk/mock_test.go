package draftzero

import (
	"context"

	domdoc "github.com/draftzero/draftzero/internal/domain/document"
	domlink "github.com/draftzero/draftzero/internal/domain/linkage"
	domperm "github.com/draftzero/draftzero/internal/domain/permission"
	domsess "github.com/draftzero/draftzero/internal/domain/session"
	linkageuc "github.com/draftzero/draftzero/internal/usecase/linkage"
)

type mockDocumentUseCase struct {
	createDocumentFn func(ctx context.Context, userID, title string) (domdoc.Document, error)
	getDocumentFn    func(ctx context.Context, userID, documentID string) (domdoc.Document, error)
	shareDocumentFn  func(ctx context.Context, userID, documentID, targetUserID string,
		roles []domperm.TypedRole) error
	createVersionFn func(ctx context.Context, userID, documentID, name, body string) (domdoc.Version, error)
	upsertNoteFn    func(ctx context.Context, userID, documentID, noteID, text string) (domdoc.Note, error)
}

func (m *mockDocumentUseCase) CreateDocument(ctx context.Context, userID, title string) (domdoc.Document, error) {
	return m.createDocumentFn(ctx, userID, title)
}

func (m *mockDocumentUseCase) GetDocument(ctx context.Context, userID, documentID string) (domdoc.Document, error) {
	return m.getDocumentFn(ctx, userID, documentID)
}

func (m *mockDocumentUseCase) RenameDocument(context.Context, string, string, string) (domdoc.Document, error) {
	return domdoc.Document{}, nil
}

func (m *mockDocumentUseCase) DeleteDocument(context.Context, string, string) error { return nil }

func (m *mockDocumentUseCase) ShareDocument(ctx context.Context, userID, documentID, targetUserID string,
	roles []domperm.TypedRole) error {
	return m.shareDocumentFn(ctx, userID, documentID, targetUserID, roles)
}

func (m *mockDocumentUseCase) CreateVersion(ctx context.Context, userID, documentID, name, body string) (domdoc.Version, error) {
	return m.createVersionFn(ctx, userID, documentID, name, body)
}

func (m *mockDocumentUseCase) RenameVersion(context.Context, string, string, string, string) (domdoc.Version, error) {
	return domdoc.Version{}, nil
}

func (m *mockDocumentUseCase) EditVersion(context.Context, string, string, string, string) (domdoc.Version, error) {
	return domdoc.Version{}, nil
}

func (m *mockDocumentUseCase) PublishVersion(context.Context, string, string, string) (domdoc.Version, error) {
	return domdoc.Version{}, nil
}

func (m *mockDocumentUseCase) DeleteVersion(context.Context, string, string, string) error {
	return nil
}

func (m *mockDocumentUseCase) ListVersions(context.Context, string, string) ([]domdoc.Version, error) {
	return nil, nil
}

func (m *mockDocumentUseCase) UpsertNote(ctx context.Context, userID, documentID, noteID, text string) (domdoc.Note, error) {
	return m.upsertNoteFn(ctx, userID, documentID, noteID, text)
}

func (m *mockDocumentUseCase) DeleteNote(context.Context, string, string, string) error { return nil }

func (m *mockDocumentUseCase) ListNotes(context.Context, string, string) ([]domdoc.Note, error) {
	return nil, nil
}

type mockLinkageUseCase struct {
	computeFn func(ctx context.Context, userID, documentID string,
		inputs []domlink.Input, nodeIDs []string) (linkageuc.Result, error)
}

func (m *mockLinkageUseCase) Compute(ctx context.Context, userID, documentID string,
	inputs []domlink.Input, nodeIDs []string) (linkageuc.Result, error) {
	return m.computeFn(ctx, userID, documentID, inputs, nodeIDs)
}

type mockSessionUseCase struct {
	startFn func(ctx context.Context, userID, documentID string) (domsess.Session, error)
	endFn   func(ctx context.Context, userID, sessionID string) (domsess.Session, error)
}

func (m *mockSessionUseCase) Start(ctx context.Context, userID, documentID string) (domsess.Session, error) {
	return m.startFn(ctx, userID, documentID)
}

func (m *mockSessionUseCase) Track(context.Context, string, string, domsess.Segment) (domsess.Session, error) {
	return domsess.Session{}, nil
}

func (m *mockSessionUseCase) End(ctx context.Context, userID, sessionID string) (domsess.Session, error) {
	return m.endFn(ctx, userID, sessionID)
}

func (m *mockSessionUseCase) List(context.Context, string) ([]domsess.Session, error) {
	return nil, nil
}
