package chi

import (
	"time"

	domdoc "github.com/draftzero/draftzero/internal/domain/document"
	domsess "github.com/draftzero/draftzero/internal/domain/session"
)

// Error codes returned to clients.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeUnauthorized     = "unauthorized"
	codeAccessDenied     = "access_denied"
	codeNotFound         = "not_found"
	codeAlreadyExists    = "already_exists"
	codeRevisionConflict = "revision_conflict"
	codeAIQuotaExceeded  = "ai_quota_exceeded"
	codeAIProviderError  = "ai_provider_error"
	codeInternalError    = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type createDocumentRequest struct {
	Title string `json:"title"`
}

type renameDocumentRequest struct {
	Title string `json:"title"`
}

type typedRoleDTO struct {
	Role  string `json:"role"`
	Scope string `json:"scope"`
}

type shareDocumentRequest struct {
	UserID string         `json:"userId"`
	Roles  []typedRoleDTO `json:"roles"`
}

type documentResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
}

type createVersionRequest struct {
	Name string `json:"name"`
	Body string `json:"body"`
}

type updateVersionRequest struct {
	Name *string `json:"name,omitempty"`
	Body *string `json:"body,omitempty"`
}

type versionResponse struct {
	ID         string `json:"id"`
	DocumentID string `json:"documentId"`
	Name       string `json:"name"`
	Body       string `json:"body"`
	Published  bool   `json:"published"`
}

type noteRequest struct {
	Text string `json:"text"`
}

type noteResponse struct {
	ID         string `json:"id"`
	DocumentID string `json:"documentId"`
	Text       string `json:"text"`
}

type linkageInputDTO struct {
	NodeID string `json:"nodeId"`
	Text   string `json:"text"`
}

type linkageRequest struct {
	Inputs  []linkageInputDTO `json:"inputs"`
	NodeIDs []string          `json:"nodeIds"`
}

type linkageResponse struct {
	NodeList   []string          `json:"nodeList"`
	Similarity [][]float64       `json:"similarityMatrix"`
	Explainers map[string]string `json:"linkageExplainer"`
}

type startSessionRequest struct {
	DocumentID string `json:"documentId"`
}

type segmentRequest struct {
	Words   int `json:"words"`
	Seconds int `json:"seconds"`
}

type sessionResponse struct {
	ID         string            `json:"id"`
	DocumentID string            `json:"documentId"`
	StartedAt  time.Time         `json:"startedAt"`
	Segments   []domsess.Segment `json:"segments"`
	Closed     bool              `json:"closed"`
	Flow       *float64          `json:"flow,omitempty"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func documentToDTO(doc *domdoc.Document) documentResponse {
	return documentResponse{
		ID:        doc.ID(),
		Title:     doc.Title(),
		OwnerID:   doc.OwnerID(),
		CreatedAt: doc.CreatedAt(),
	}
}

func versionToDTO(ver *domdoc.Version) versionResponse {
	return versionResponse{
		ID:         ver.ID(),
		DocumentID: ver.DocumentID(),
		Name:       ver.Name(),
		Body:       ver.Body(),
		Published:  ver.Published(),
	}
}

func noteToDTO(note *domdoc.Note) noteResponse {
	return noteResponse{
		ID:         note.ID(),
		DocumentID: note.DocumentID(),
		Text:       note.Text(),
	}
}

func sessionToDTO(sess *domsess.Session) sessionResponse {
	resp := sessionResponse{
		ID:         sess.ID(),
		DocumentID: sess.DocumentID(),
		StartedAt:  sess.StartedAt(),
		Segments:   sess.Segments(),
		Closed:     sess.Closed(),
	}
	if sess.Closed() {
		flow := sess.Flow()
		resp.Flow = &flow
	}
	return resp
}
