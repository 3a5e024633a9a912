package document

import (
	"context"

	domdoc "github.com/draftzero/draftzero/internal/domain/document"
	domperm "github.com/draftzero/draftzero/internal/domain/permission"
)

// Repository defines the storage contract for documents, versions and notes.
type Repository interface {
	Create(ctx context.Context, doc *domdoc.Document) error
	Get(ctx context.Context, id string) (domdoc.Document, error)
	Save(ctx context.Context, doc *domdoc.Document) error
	Delete(ctx context.Context, id string) error

	SaveVersion(ctx context.Context, ver *domdoc.Version) error
	GetVersion(ctx context.Context, documentID, versionID string) (domdoc.Version, error)
	ListVersions(ctx context.Context, documentID string) ([]domdoc.Version, error)
	DeleteVersion(ctx context.Context, documentID, versionID string) error

	SaveNote(ctx context.Context, note *domdoc.Note) error
	GetNote(ctx context.Context, documentID, noteID string) (domdoc.Note, error)
	ListNotes(ctx context.Context, documentID string) ([]domdoc.Note, error)
	DeleteNote(ctx context.Context, documentID, noteID string) error
}

// Grants defines the storage contract for per-document role grants.
type Grants interface {
	Grant(ctx context.Context, documentID, userID string, roles []domperm.TypedRole) error
	RolesForUser(ctx context.Context, documentID, userID string) ([]domperm.TypedRole, error)
	DeleteAll(ctx context.Context, documentID string) error
}

// LinkageCleaner drops the linkage snapshot when its document goes away.
type LinkageCleaner interface {
	Delete(ctx context.Context, documentID string) error
}
