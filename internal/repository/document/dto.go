package document

import (
	"time"

	domdoc "github.com/draftzero/draftzero/internal/domain/document"
)

// docDTO is the stored JSON shape of a document.
type docDTO struct {
	Title     string `json:"title"`
	OwnerID   string `json:"ownerId"`
	CreatedAt string `json:"createdAt"`
}

// versionDTO is the stored JSON shape of a document version.
type versionDTO struct {
	Name      string `json:"name"`
	Body      string `json:"body"`
	Published bool   `json:"published"`
}

// noteDTO is the stored JSON shape of a note.
type noteDTO struct {
	Text string `json:"text"`
}

func buildDocDTO(doc *domdoc.Document) docDTO {
	return docDTO{
		Title:     doc.Title(),
		OwnerID:   doc.OwnerID(),
		CreatedAt: doc.CreatedAt().Format(time.RFC3339Nano),
	}
}

func parseDocDTO(id string, dto docDTO) domdoc.Document {
	createdAt, _ := time.Parse(time.RFC3339Nano, dto.CreatedAt)
	return domdoc.Reconstruct(id, dto.Title, dto.OwnerID, createdAt)
}

func buildVersionDTO(ver *domdoc.Version) versionDTO {
	return versionDTO{Name: ver.Name(), Body: ver.Body(), Published: ver.Published()}
}

func parseVersionDTO(id, documentID string, dto versionDTO) domdoc.Version {
	return domdoc.ReconstructVersion(id, documentID, dto.Name, dto.Body, dto.Published)
}

func buildNoteDTO(note *domdoc.Note) noteDTO {
	return noteDTO{Text: note.Text()}
}

func parseNoteDTO(id, documentID string, dto noteDTO) domdoc.Note {
	return domdoc.ReconstructNote(id, documentID, dto.Text)
}
