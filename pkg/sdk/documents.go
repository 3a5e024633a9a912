package draftzero

import (
	"context"
	"fmt"
	"time"

	domdoc "github.com/draftzero/draftzero/internal/domain/document"
	domperm "github.com/draftzero/draftzero/internal/domain/permission"
)

// TypedRole pairs a role with the scope it applies to.
// Roles: OWNER, ADMIN, EDITOR, LEAD_REVIEWER, REVIEWER.
// Scopes: document, document_version, note.
type TypedRole struct {
	Role  string
	Scope string
}

// DocumentInfo describes a document.
type DocumentInfo struct {
	ID        string
	Title     string
	OwnerID   string
	CreatedAt time.Time
}

// VersionInfo describes a named draft of a document.
type VersionInfo struct {
	ID         string
	DocumentID string
	Name       string
	Body       string
	Published  bool
}

// NoteInfo describes a margin note on a document.
type NoteInfo struct {
	ID         string
	DocumentID string
	Text       string
}

// DocumentService performs document, version and note operations on behalf of
// one user. All permission checks apply.
type DocumentService struct {
	userID string
	svc    documentUseCase
	obs    *observer
}

// Documents returns the document service acting as the given user.
func (c *Client) Documents(userID string) *DocumentService {
	return &DocumentService{userID: userID, svc: c.docSvc, obs: c.obs}
}

// Create creates a document owned by the acting user.
func (s *DocumentService) Create(ctx context.Context, title string) (_ DocumentInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.create", start, err) }()

	doc, err := s.svc.CreateDocument(ctx, s.userID, title)
	if err != nil {
		return DocumentInfo{}, fmt.Errorf("create document: %w", err)
	}
	return fromInternalDocument(&doc), nil
}

// Get retrieves a document the acting user holds any role on.
func (s *DocumentService) Get(ctx context.Context, documentID string) (_ DocumentInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.get", start, err) }()

	doc, err := s.svc.GetDocument(ctx, s.userID, documentID)
	if err != nil {
		return DocumentInfo{}, fmt.Errorf("get document: %w", err)
	}
	return fromInternalDocument(&doc), nil
}

// Rename changes a document's title.
func (s *DocumentService) Rename(ctx context.Context, documentID, title string) (_ DocumentInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.rename", start, err) }()

	doc, err := s.svc.RenameDocument(ctx, s.userID, documentID, title)
	if err != nil {
		return DocumentInfo{}, fmt.Errorf("rename document: %w", err)
	}
	return fromInternalDocument(&doc), nil
}

// Delete removes a document with its versions, notes, grants and linkage state.
func (s *DocumentService) Delete(ctx context.Context, documentID string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.delete", start, err) }()

	if err = s.svc.DeleteDocument(ctx, s.userID, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Share grants typed roles on a document to another user.
func (s *DocumentService) Share(ctx context.Context, documentID, targetUserID string, roles []TypedRole) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.share", start, err) }()

	internal := make([]domperm.TypedRole, len(roles))
	for i, tr := range roles {
		internal[i] = domperm.TypedRole{Role: domperm.Role(tr.Role), Scope: domperm.Scope(tr.Scope)}
	}
	if err = s.svc.ShareDocument(ctx, s.userID, documentID, targetUserID, internal); err != nil {
		return fmt.Errorf("share document: %w", err)
	}
	return nil
}

// CreateVersion adds a named draft to a document.
func (s *DocumentService) CreateVersion(ctx context.Context, documentID, name, body string) (_ VersionInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("version.create", start, err) }()

	ver, err := s.svc.CreateVersion(ctx, s.userID, documentID, name, body)
	if err != nil {
		return VersionInfo{}, fmt.Errorf("create version: %w", err)
	}
	return fromInternalVersion(&ver), nil
}

// RenameVersion changes a version's name.
func (s *DocumentService) RenameVersion(ctx context.Context, documentID, versionID, name string) (_ VersionInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("version.rename", start, err) }()

	ver, err := s.svc.RenameVersion(ctx, s.userID, documentID, versionID, name)
	if err != nil {
		return VersionInfo{}, fmt.Errorf("rename version: %w", err)
	}
	return fromInternalVersion(&ver), nil
}

// EditVersion replaces a version's body.
func (s *DocumentService) EditVersion(ctx context.Context, documentID, versionID, body string) (_ VersionInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("version.edit", start, err) }()

	ver, err := s.svc.EditVersion(ctx, s.userID, documentID, versionID, body)
	if err != nil {
		return VersionInfo{}, fmt.Errorf("edit version: %w", err)
	}
	return fromInternalVersion(&ver), nil
}

// PublishVersion marks a version published.
func (s *DocumentService) PublishVersion(ctx context.Context, documentID, versionID string) (_ VersionInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("version.publish", start, err) }()

	ver, err := s.svc.PublishVersion(ctx, s.userID, documentID, versionID)
	if err != nil {
		return VersionInfo{}, fmt.Errorf("publish version: %w", err)
	}
	return fromInternalVersion(&ver), nil
}

// DeleteVersion removes a version.
func (s *DocumentService) DeleteVersion(ctx context.Context, documentID, versionID string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("version.delete", start, err) }()

	if err = s.svc.DeleteVersion(ctx, s.userID, documentID, versionID); err != nil {
		return fmt.Errorf("delete version: %w", err)
	}
	return nil
}

// ListVersions returns all versions of a document.
func (s *DocumentService) ListVersions(ctx context.Context, documentID string) (_ []VersionInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("version.list", start, err) }()

	versions, err := s.svc.ListVersions(ctx, s.userID, documentID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	out := make([]VersionInfo, len(versions))
	for i := range versions {
		out[i] = fromInternalVersion(&versions[i])
	}
	return out, nil
}

// UpsertNote creates a note (empty noteID) or replaces its text.
func (s *DocumentService) UpsertNote(ctx context.Context, documentID, noteID, text string) (_ NoteInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("note.upsert", start, err) }()

	note, err := s.svc.UpsertNote(ctx, s.userID, documentID, noteID, text)
	if err != nil {
		return NoteInfo{}, fmt.Errorf("upsert note: %w", err)
	}
	return fromInternalNote(&note), nil
}

// DeleteNote removes a note.
func (s *DocumentService) DeleteNote(ctx context.Context, documentID, noteID string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("note.delete", start, err) }()

	if err = s.svc.DeleteNote(ctx, s.userID, documentID, noteID); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}

// ListNotes returns all notes on a document.
func (s *DocumentService) ListNotes(ctx context.Context, documentID string) (_ []NoteInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("note.list", start, err) }()

	notes, err := s.svc.ListNotes(ctx, s.userID, documentID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	out := make([]NoteInfo, len(notes))
	for i := range notes {
		out[i] = fromInternalNote(&notes[i])
	}
	return out, nil
}

func fromInternalDocument(doc *domdoc.Document) DocumentInfo {
	return DocumentInfo{
		ID:        doc.ID(),
		Title:     doc.Title(),
		OwnerID:   doc.OwnerID(),
		CreatedAt: doc.CreatedAt(),
	}
}

func fromInternalVersion(ver *domdoc.Version) VersionInfo {
	return VersionInfo{
		ID:         ver.ID(),
		DocumentID: ver.DocumentID(),
		Name:       ver.Name(),
		Body:       ver.Body(),
		Published:  ver.Published(),
	}
}

func fromInternalNote(note *domdoc.Note) NoteInfo {
	return NoteInfo{
		ID:         note.ID(),
		DocumentID: note.DocumentID(),
		Text:       note.Text(),
	}
}
