package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across layers. Transport maps these to HTTP statuses.
var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrVersionNotFound signals a missing document version.
	ErrVersionNotFound = errors.New("document version not found")
	// ErrNoteNotFound signals a missing note.
	ErrNoteNotFound = errors.New("note not found")
	// ErrSessionNotFound signals a missing writing session.
	ErrSessionNotFound = errors.New("writing session not found")
	// ErrAlreadyExists signals a conflicting resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrAccessDenied signals the caller holds no role granting the action.
	ErrAccessDenied = errors.New("access denied")
	// ErrInvalidInput signals a malformed or out-of-range request value.
	ErrInvalidInput = errors.New("invalid input")
	// ErrRevisionConflict signals an optimistic locking conflict.
	ErrRevisionConflict = errors.New("revision conflict")
	// ErrAIQuotaExceeded signals the per-user AI call budget is spent.
	ErrAIQuotaExceeded = errors.New("ai quota exceeded")
	// ErrAIProviderError signals an upstream embedding/chat API failure.
	ErrAIProviderError = errors.New("ai provider error")
)

// RevisionConflictError wraps ErrRevisionConflict with the current resource revision.
type RevisionConflictError struct {
	CurrentRevision int
}

func (e *RevisionConflictError) Error() string {
	return fmt.Sprintf("%s: current revision is %d", ErrRevisionConflict.Error(), e.CurrentRevision)
}

func (e *RevisionConflictError) Unwrap() error { return ErrRevisionConflict }
