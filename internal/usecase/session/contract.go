package session

import (
	"context"

	domsess "github.com/draftzero/draftzero/internal/domain/session"
)

// Repository defines the storage contract for writing sessions.
type Repository interface {
	Save(ctx context.Context, sess *domsess.Session) error
	Get(ctx context.Context, userID, sessionID string) (domsess.Session, error)
	ListByUser(ctx context.Context, userID string) ([]domsess.Session, error)
}
