// Package document holds the collaborative-writing aggregates: documents,
// their named versions, and attached notes.
package document

import (
	"fmt"
	"time"
)

// MaxTitleLen bounds document, version, and note titles.
const MaxTitleLen = 256

// MaxBodyLen bounds version and note bodies in bytes.
const MaxBodyLen = 1 << 20 // 1MB

// Document is the document aggregate (immutable value object).
type Document struct {
	id        string
	title     string
	ownerID   string
	createdAt time.Time
}

// New validates and creates a Document. The creator becomes its owner.
func New(id, title, ownerID string, createdAt time.Time) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	if title == "" {
		return Document{}, fmt.Errorf("title is required")
	}
	if len(title) > MaxTitleLen {
		return Document{}, fmt.Errorf("title too long (max %d)", MaxTitleLen)
	}
	if ownerID == "" {
		return Document{}, fmt.Errorf("owner ID is required")
	}
	return Document{id: id, title: title, ownerID: ownerID, createdAt: createdAt.UTC()}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id, title, ownerID string, createdAt time.Time) Document {
	return Document{id: id, title: title, ownerID: ownerID, createdAt: createdAt}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Title returns the document title.
func (d *Document) Title() string { return d.title }

// OwnerID returns the creating user's ID.
func (d *Document) OwnerID() string { return d.ownerID }

// CreatedAt returns the creation timestamp.
func (d *Document) CreatedAt() time.Time { return d.createdAt }

// WithTitle returns a copy with the title replaced.
func (d *Document) WithTitle(title string) Document {
	return Document{id: d.id, title: title, ownerID: d.ownerID, createdAt: d.createdAt}
}

// Version is a named draft of a document.
type Version struct {
	id         string
	documentID string
	name       string
	body       string
	published  bool
}

// NewVersion validates and creates a Version.
func NewVersion(id, documentID, name, body string) (Version, error) {
	if id == "" || documentID == "" {
		return Version{}, fmt.Errorf("version and document IDs are required")
	}
	if name == "" {
		return Version{}, fmt.Errorf("version name is required")
	}
	if len(name) > MaxTitleLen {
		return Version{}, fmt.Errorf("version name too long (max %d)", MaxTitleLen)
	}
	if len(body) > MaxBodyLen {
		return Version{}, fmt.Errorf("body too large (max %d bytes)", MaxBodyLen)
	}
	return Version{id: id, documentID: documentID, name: name, body: body}, nil
}

// ReconstructVersion creates a Version without validation (storage hydration).
func ReconstructVersion(id, documentID, name, body string, published bool) Version {
	return Version{id: id, documentID: documentID, name: name, body: body, published: published}
}

// ID returns the version identifier.
func (v *Version) ID() string { return v.id }

// DocumentID returns the parent document ID.
func (v *Version) DocumentID() string { return v.documentID }

// Name returns the version name.
func (v *Version) Name() string { return v.name }

// Body returns the version body.
func (v *Version) Body() string { return v.body }

// Published reports whether the version has been published.
func (v *Version) Published() bool { return v.published }

// WithName returns a copy with the name replaced.
func (v *Version) WithName(name string) Version {
	return Version{id: v.id, documentID: v.documentID, name: name, body: v.body, published: v.published}
}

// WithBody returns a copy with the body replaced.
func (v *Version) WithBody(body string) Version {
	return Version{id: v.id, documentID: v.documentID, name: v.name, body: body, published: v.published}
}

// AsPublished returns a copy marked published.
func (v *Version) AsPublished() Version {
	return Version{id: v.id, documentID: v.documentID, name: v.name, body: v.body, published: true}
}

// Note is a scratchpad/idea node attached to a document. Its ID doubles as the
// linkage node ID.
type Note struct {
	id         string
	documentID string
	text       string
}

// NewNote validates and creates a Note.
func NewNote(id, documentID, text string) (Note, error) {
	if id == "" || documentID == "" {
		return Note{}, fmt.Errorf("note and document IDs are required")
	}
	if len(text) > MaxBodyLen {
		return Note{}, fmt.Errorf("note too large (max %d bytes)", MaxBodyLen)
	}
	return Note{id: id, documentID: documentID, text: text}, nil
}

// ReconstructNote creates a Note without validation (storage hydration).
func ReconstructNote(id, documentID, text string) Note {
	return Note{id: id, documentID: documentID, text: text}
}

// ID returns the note identifier.
func (n *Note) ID() string { return n.id }

// DocumentID returns the parent document ID.
func (n *Note) DocumentID() string { return n.documentID }

// Text returns the note text.
func (n *Note) Text() string { return n.text }

// WithText returns a copy with the text replaced.
func (n *Note) WithText(text string) Note {
	return Note{id: n.id, documentID: n.documentID, text: text}
}
