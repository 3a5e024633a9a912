// Package document implements permission-gated document, version and note
// operations. Every mutation loads the caller's typed roles and asks the
// permission resolver; a missing grant fails with ErrAccessDenied.
package document

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/draftzero/draftzero/internal/domain"
	domdoc "github.com/draftzero/draftzero/internal/domain/document"
	domperm "github.com/draftzero/draftzero/internal/domain/permission"
)

// ownerRoles are granted to a document's creator: OWNER at every scope.
var ownerRoles = []domperm.TypedRole{
	{Role: domperm.RoleOwner, Scope: domperm.ScopeDocument},
	{Role: domperm.RoleOwner, Scope: domperm.ScopeDocumentVersion},
	{Role: domperm.RoleOwner, Scope: domperm.ScopeNote},
}

// Service handles document lifecycle and sharing.
type Service struct {
	repo     Repository
	grants   Grants
	resolver *domperm.Resolver
	linkage  LinkageCleaner
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// New creates a document Service. linkage may be nil when snapshot cleanup is
// handled elsewhere.
func New(
	repo Repository,
	grants Grants,
	resolver *domperm.Resolver,
	linkage LinkageCleaner,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		grants:   grants,
		resolver: resolver,
		linkage:  linkage,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// CreateDocument creates a document and makes the caller its owner.
func (s *Service) CreateDocument(ctx context.Context, userID, title string) (domdoc.Document, error) {
	doc, err := domdoc.New(s.newID(), title, userID, s.now())
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	if err := s.repo.Create(ctx, &doc); err != nil {
		return domdoc.Document{}, fmt.Errorf("create document: %w", err)
	}
	if err := s.grants.Grant(ctx, doc.ID(), userID, ownerRoles); err != nil {
		return domdoc.Document{}, fmt.Errorf("grant owner roles: %w", err)
	}

	s.logger.Info("document created",
		zap.String("document_id", doc.ID()),
		zap.String("owner_id", userID),
	)
	return doc, nil
}

// GetDocument returns a document the caller has any role on.
func (s *Service) GetDocument(ctx context.Context, userID, documentID string) (domdoc.Document, error) {
	if _, err := s.requireAnyRole(ctx, documentID, userID); err != nil {
		return domdoc.Document{}, err
	}
	return s.repo.Get(ctx, documentID)
}

// RenameDocument changes the document title.
func (s *Service) RenameDocument(ctx context.Context, userID, documentID, title string) (domdoc.Document, error) {
	if err := s.authorize(ctx, documentID, userID, domperm.ActionRenameDocument); err != nil {
		return domdoc.Document{}, err
	}

	doc, err := s.repo.Get(ctx, documentID)
	if err != nil {
		return domdoc.Document{}, err
	}
	renamed, err := domdoc.New(doc.ID(), title, doc.OwnerID(), doc.CreatedAt())
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if err := s.repo.Save(ctx, &renamed); err != nil {
		return domdoc.Document{}, fmt.Errorf("save document: %w", err)
	}
	return renamed, nil
}

// DeleteDocument removes the document, its grants and its linkage snapshot.
func (s *Service) DeleteDocument(ctx context.Context, userID, documentID string) error {
	if err := s.authorize(ctx, documentID, userID, domperm.ActionDeleteDocument); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, documentID); err != nil {
		return err
	}
	if err := s.grants.DeleteAll(ctx, documentID); err != nil {
		return fmt.Errorf("delete grants: %w", err)
	}
	if s.linkage != nil {
		if err := s.linkage.Delete(ctx, documentID); err != nil {
			s.logger.Warn("failed to delete linkage snapshot",
				zap.String("document_id", documentID), zap.Error(err))
		}
	}

	s.logger.Info("document deleted", zap.String("document_id", documentID))
	return nil
}

// ShareDocument grants typed roles on a document to another user.
func (s *Service) ShareDocument(
	ctx context.Context, userID, documentID, targetUserID string,
	roles []domperm.TypedRole,
) error {
	if err := s.authorize(ctx, documentID, userID, domperm.ActionShareDocument); err != nil {
		return err
	}
	if targetUserID == "" || len(roles) == 0 {
		return fmt.Errorf("%w: target user and roles are required", domain.ErrInvalidInput)
	}

	// Surface grants that resolve to zero actions before storing them.
	for _, tr := range roles {
		s.resolver.AllForTypedRole(tr)
	}

	if err := s.grants.Grant(ctx, documentID, targetUserID, roles); err != nil {
		return fmt.Errorf("grant roles: %w", err)
	}

	s.logger.Info("document shared",
		zap.String("document_id", documentID),
		zap.String("target_user_id", targetUserID),
		zap.Int("roles", len(roles)),
	)
	return nil
}

// CreateVersion adds a named draft to a document.
func (s *Service) CreateVersion(ctx context.Context, userID, documentID, name, body string) (domdoc.Version, error) {
	if err := s.authorize(ctx, documentID, userID, domperm.ActionCreateDocumentVersion); err != nil {
		return domdoc.Version{}, err
	}
	if _, err := s.repo.Get(ctx, documentID); err != nil {
		return domdoc.Version{}, err
	}

	ver, err := domdoc.NewVersion(s.newID(), documentID, name, body)
	if err != nil {
		return domdoc.Version{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if err := s.repo.SaveVersion(ctx, &ver); err != nil {
		return domdoc.Version{}, fmt.Errorf("save version: %w", err)
	}
	return ver, nil
}

// RenameVersion changes a version's name.
func (s *Service) RenameVersion(ctx context.Context, userID, documentID, versionID, name string) (domdoc.Version, error) {
	if err := s.authorize(ctx, documentID, userID, domperm.ActionRenameDocumentVersion); err != nil {
		return domdoc.Version{}, err
	}

	ver, err := s.repo.GetVersion(ctx, documentID, versionID)
	if err != nil {
		return domdoc.Version{}, err
	}
	renamed, err := domdoc.NewVersion(ver.ID(), ver.DocumentID(), name, ver.Body())
	if err != nil {
		return domdoc.Version{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if ver.Published() {
		renamed = renamed.AsPublished()
	}
	if err := s.repo.SaveVersion(ctx, &renamed); err != nil {
		return domdoc.Version{}, fmt.Errorf("save version: %w", err)
	}
	return renamed, nil
}

// EditVersion replaces a version's body.
func (s *Service) EditVersion(ctx context.Context, userID, documentID, versionID, body string) (domdoc.Version, error) {
	if err := s.authorize(ctx, documentID, userID, domperm.ActionEditDocumentVersion); err != nil {
		return domdoc.Version{}, err
	}

	ver, err := s.repo.GetVersion(ctx, documentID, versionID)
	if err != nil {
		return domdoc.Version{}, err
	}
	if len(body) > domdoc.MaxBodyLen {
		return domdoc.Version{}, fmt.Errorf("%w: body too large", domain.ErrInvalidInput)
	}
	edited := ver.WithBody(body)
	if err := s.repo.SaveVersion(ctx, &edited); err != nil {
		return domdoc.Version{}, fmt.Errorf("save version: %w", err)
	}
	return edited, nil
}

// PublishVersion marks a version published.
func (s *Service) PublishVersion(ctx context.Context, userID, documentID, versionID string) (domdoc.Version, error) {
	if err := s.authorize(ctx, documentID, userID, domperm.ActionPublishDocumentVersion); err != nil {
		return domdoc.Version{}, err
	}

	ver, err := s.repo.GetVersion(ctx, documentID, versionID)
	if err != nil {
		return domdoc.Version{}, err
	}
	published := ver.AsPublished()
	if err := s.repo.SaveVersion(ctx, &published); err != nil {
		return domdoc.Version{}, fmt.Errorf("save version: %w", err)
	}

	s.logger.Info("version published",
		zap.String("document_id", documentID),
		zap.String("version_id", versionID),
	)
	return published, nil
}

// DeleteVersion removes a version.
func (s *Service) DeleteVersion(ctx context.Context, userID, documentID, versionID string) error {
	if err := s.authorize(ctx, documentID, userID, domperm.ActionDeleteDocumentVersion); err != nil {
		return err
	}
	return s.repo.DeleteVersion(ctx, documentID, versionID)
}

// ListVersions returns all versions of a document the caller can see.
func (s *Service) ListVersions(ctx context.Context, userID, documentID string) ([]domdoc.Version, error) {
	if _, err := s.requireAnyRole(ctx, documentID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListVersions(ctx, documentID)
}

// UpsertNote creates a note or replaces its text.
func (s *Service) UpsertNote(ctx context.Context, userID, documentID, noteID, text string) (domdoc.Note, error) {
	if err := s.authorize(ctx, documentID, userID, domperm.ActionEditNote); err != nil {
		return domdoc.Note{}, err
	}
	if _, err := s.repo.Get(ctx, documentID); err != nil {
		return domdoc.Note{}, err
	}

	if noteID == "" {
		noteID = s.newID()
	}
	note, err := domdoc.NewNote(noteID, documentID, text)
	if err != nil {
		return domdoc.Note{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if err := s.repo.SaveNote(ctx, &note); err != nil {
		return domdoc.Note{}, fmt.Errorf("save note: %w", err)
	}
	return note, nil
}

// DeleteNote removes a note.
func (s *Service) DeleteNote(ctx context.Context, userID, documentID, noteID string) error {
	if err := s.authorize(ctx, documentID, userID, domperm.ActionDeleteNote); err != nil {
		return err
	}
	return s.repo.DeleteNote(ctx, documentID, noteID)
}

// ListNotes returns all notes on a document the caller can see.
func (s *Service) ListNotes(ctx context.Context, userID, documentID string) ([]domdoc.Note, error) {
	if _, err := s.requireAnyRole(ctx, documentID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListNotes(ctx, documentID)
}

// authorize loads the caller's roles and gates the action through the resolver.
func (s *Service) authorize(ctx context.Context, documentID, userID string, action domperm.Action) error {
	roles, err := s.grants.RolesForUser(ctx, documentID, userID)
	if err != nil {
		return fmt.Errorf("load roles: %w", err)
	}
	if !s.resolver.AnyHas(roles, action) {
		return fmt.Errorf("%s on document %s: %w", action, documentID, domain.ErrAccessDenied)
	}
	return nil
}

// requireAnyRole passes if the caller holds at least one role on the document.
func (s *Service) requireAnyRole(ctx context.Context, documentID, userID string) ([]domperm.TypedRole, error) {
	roles, err := s.grants.RolesForUser(ctx, documentID, userID)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	if len(roles) == 0 {
		return nil, fmt.Errorf("view document %s: %w", documentID, domain.ErrAccessDenied)
	}
	return roles, nil
}
