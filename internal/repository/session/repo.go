// Package session persists writing sessions as JSON blobs keyed per user.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/draftzero/draftzero/internal/db"
	"github.com/draftzero/draftzero/internal/domain"
	domsess "github.com/draftzero/draftzero/internal/domain/session"
)

// store is the consumer interface for sessions (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// sessionDTO is the stored JSON shape of a writing session.
type sessionDTO struct {
	ID         string            `json:"id"`
	UserID     string            `json:"userId"`
	DocumentID string            `json:"documentId"`
	StartedAt  string            `json:"startedAt"`
	Segments   []domsess.Segment `json:"segments"`
	Closed     bool              `json:"closed"`
	Flow       float64           `json:"flow"`
}

// Repo implements the session usecase's Repository.
type Repo struct {
	store store
}

// New creates a session repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Save creates or overwrites a session.
func (r *Repo) Save(ctx context.Context, sess *domsess.Session) error {
	dto := sessionDTO{
		ID:         sess.ID(),
		UserID:     sess.UserID(),
		DocumentID: sess.DocumentID(),
		StartedAt:  sess.StartedAt().Format(time.RFC3339Nano),
		Segments:   sess.Segments(),
		Closed:     sess.Closed(),
		Flow:       sess.Flow(),
	}
	data, err := json.Marshal(dto)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	key := sessionKey(sess.UserID(), sess.ID())
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

// Get returns a session by user and session ID.
func (r *Repo) Get(ctx context.Context, userID, sessionID string) (domsess.Session, error) {
	key := sessionKey(userID, sessionID)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domsess.Session{}, domain.ErrSessionNotFound
		}
		return domsess.Session{}, fmt.Errorf("json.get %s: %w", key, err)
	}
	return parseSession(raw)
}

// ListByUser returns all sessions recorded for a user.
func (r *Repo) ListByUser(ctx context.Context, userID string) ([]domsess.Session, error) {
	pattern := sessionKey(userID, "*")
	keys, err := r.store.Scan(ctx, pattern)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", pattern, err)
	}

	sessions := make([]domsess.Session, 0, len(keys))
	for _, key := range keys {
		raw, err := r.store.JSONGet(ctx, key, "$")
		if err != nil {
			if errors.Is(err, db.ErrKeyNotFound) {
				continue
			}
			return nil, fmt.Errorf("json.get %s: %w", key, err)
		}
		sess, err := parseSession(raw)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

func parseSession(raw []byte) (domsess.Session, error) {
	var wrapper []sessionDTO
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return domsess.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}
	if len(wrapper) == 0 {
		return domsess.Session{}, domain.ErrSessionNotFound
	}

	dto := wrapper[0]
	startedAt, _ := time.Parse(time.RFC3339Nano, dto.StartedAt)
	return domsess.Reconstruct(
		dto.ID, dto.UserID, dto.DocumentID, startedAt,
		dto.Segments, dto.Closed, dto.Flow,
	), nil
}

func sessionKey(userID, sessionID string) string {
	return fmt.Sprintf("%ssession:%s:%s", domain.KeyPrefix, userID, sessionID)
}
