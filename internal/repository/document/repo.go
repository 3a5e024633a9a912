// Package document persists documents, versions and notes as JSON blobs.
package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/draftzero/draftzero/internal/db"
	"github.com/draftzero/draftzero/internal/domain"
	domdoc "github.com/draftzero/draftzero/internal/domain/document"
)

// store is the consumer interface for documents (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements the document usecase's Repository.
type Repo struct {
	store store
}

// New creates a document repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Create stores a new document. Fails if the key already exists.
func (r *Repo) Create(ctx context.Context, doc *domdoc.Document) error {
	key := docKey(doc.ID())

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if exists {
		return fmt.Errorf("document %s: %w", doc.ID(), domain.ErrAlreadyExists)
	}

	return r.write(ctx, key, buildDocDTO(doc))
}

// Get returns a document by ID.
func (r *Repo) Get(ctx context.Context, id string) (domdoc.Document, error) {
	var dto docDTO
	if err := r.read(ctx, docKey(id), &dto, domain.ErrDocumentNotFound); err != nil {
		return domdoc.Document{}, err
	}
	return parseDocDTO(id, dto), nil
}

// Save overwrites an existing document.
func (r *Repo) Save(ctx context.Context, doc *domdoc.Document) error {
	key := docKey(doc.ID())

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrDocumentNotFound
	}

	return r.write(ctx, key, buildDocDTO(doc))
}

// Delete removes a document and every version and note attached to it.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := docKey(id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrDocumentNotFound
	}

	for _, pattern := range []string{
		versionKey(id, "*"),
		noteKey(id, "*"),
	} {
		children, err := r.store.Scan(ctx, pattern)
		if err != nil {
			return fmt.Errorf("scan %s: %w", pattern, err)
		}
		for _, child := range children {
			if err := r.store.Del(ctx, child); err != nil {
				return fmt.Errorf("del %s: %w", child, err)
			}
		}
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// SaveVersion creates or updates a version.
func (r *Repo) SaveVersion(ctx context.Context, ver *domdoc.Version) error {
	return r.write(ctx, versionKey(ver.DocumentID(), ver.ID()), buildVersionDTO(ver))
}

// GetVersion returns a version by document and version ID.
func (r *Repo) GetVersion(ctx context.Context, documentID, versionID string) (domdoc.Version, error) {
	var dto versionDTO
	if err := r.read(ctx, versionKey(documentID, versionID), &dto, domain.ErrVersionNotFound); err != nil {
		return domdoc.Version{}, err
	}
	return parseVersionDTO(versionID, documentID, dto), nil
}

// ListVersions returns all versions of a document.
func (r *Repo) ListVersions(ctx context.Context, documentID string) ([]domdoc.Version, error) {
	prefix := versionKey(documentID, "")
	keys, err := r.store.Scan(ctx, prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan versions %s: %w", documentID, err)
	}

	versions := make([]domdoc.Version, 0, len(keys))
	for _, key := range keys {
		var dto versionDTO
		if err := r.read(ctx, key, &dto, domain.ErrVersionNotFound); err != nil {
			if errors.Is(err, domain.ErrVersionNotFound) {
				continue
			}
			return nil, err
		}
		versions = append(versions, parseVersionDTO(strings.TrimPrefix(key, prefix), documentID, dto))
	}
	return versions, nil
}

// DeleteVersion removes a version.
func (r *Repo) DeleteVersion(ctx context.Context, documentID, versionID string) error {
	return r.deleteChild(ctx, versionKey(documentID, versionID), domain.ErrVersionNotFound)
}

// SaveNote creates or updates a note.
func (r *Repo) SaveNote(ctx context.Context, note *domdoc.Note) error {
	return r.write(ctx, noteKey(note.DocumentID(), note.ID()), buildNoteDTO(note))
}

// GetNote returns a note by document and note ID.
func (r *Repo) GetNote(ctx context.Context, documentID, noteID string) (domdoc.Note, error) {
	var dto noteDTO
	if err := r.read(ctx, noteKey(documentID, noteID), &dto, domain.ErrNoteNotFound); err != nil {
		return domdoc.Note{}, err
	}
	return parseNoteDTO(noteID, documentID, dto), nil
}

// ListNotes returns all notes attached to a document.
func (r *Repo) ListNotes(ctx context.Context, documentID string) ([]domdoc.Note, error) {
	prefix := noteKey(documentID, "")
	keys, err := r.store.Scan(ctx, prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan notes %s: %w", documentID, err)
	}

	notes := make([]domdoc.Note, 0, len(keys))
	for _, key := range keys {
		var dto noteDTO
		if err := r.read(ctx, key, &dto, domain.ErrNoteNotFound); err != nil {
			if errors.Is(err, domain.ErrNoteNotFound) {
				continue
			}
			return nil, err
		}
		notes = append(notes, parseNoteDTO(strings.TrimPrefix(key, prefix), documentID, dto))
	}
	return notes, nil
}

// DeleteNote removes a note.
func (r *Repo) DeleteNote(ctx context.Context, documentID, noteID string) error {
	return r.deleteChild(ctx, noteKey(documentID, noteID), domain.ErrNoteNotFound)
}

func (r *Repo) write(ctx context.Context, key string, dto any) error {
	data, err := json.Marshal(dto)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

// read unmarshals the JSON.GET result. A "$" path query returns an array wrapper.
func (r *Repo) read(ctx context.Context, key string, out any, notFound error) error {
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return notFound
		}
		return fmt.Errorf("json.get %s: %w", key, err)
	}

	var wrapper []json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	if len(wrapper) == 0 {
		return notFound
	}
	if err := json.Unmarshal(wrapper[0], out); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}

func (r *Repo) deleteChild(ctx context.Context, key string, notFound error) error {
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return notFound
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

func docKey(id string) string {
	return fmt.Sprintf("%sdoc:%s", domain.KeyPrefix, id)
}

func versionKey(documentID, versionID string) string {
	return fmt.Sprintf("%sdocver:%s:%s", domain.KeyPrefix, documentID, versionID)
}

func noteKey(documentID, noteID string) string {
	return fmt.Sprintf("%snote:%s:%s", domain.KeyPrefix, documentID, noteID)
}
