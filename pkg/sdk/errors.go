package draftzero

import "github.com/draftzero/draftzero/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound         = domain.ErrNotFound
	ErrDocumentNotFound = domain.ErrDocumentNotFound
	ErrVersionNotFound  = domain.ErrVersionNotFound
	ErrNoteNotFound     = domain.ErrNoteNotFound
	ErrSessionNotFound  = domain.ErrSessionNotFound
	ErrAlreadyExists    = domain.ErrAlreadyExists
	ErrAccessDenied     = domain.ErrAccessDenied
	ErrInvalidInput     = domain.ErrInvalidInput
	ErrRevisionConflict = domain.ErrRevisionConflict
	ErrAIQuotaExceeded  = domain.ErrAIQuotaExceeded
	ErrAIProviderError  = domain.ErrAIProviderError
)
