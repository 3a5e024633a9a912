// Package session tracks writing sessions and computes the flow statistic when
// a session closes.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/draftzero/draftzero/internal/domain"
	domsess "github.com/draftzero/draftzero/internal/domain/session"
)

// Service handles the writing-session lifecycle.
type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// New creates a session Service.
func New(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Start opens a new writing session on a document.
func (s *Service) Start(ctx context.Context, userID, documentID string) (domsess.Session, error) {
	sess, err := domsess.New(s.newID(), userID, documentID, s.now())
	if err != nil {
		return domsess.Session{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if err := s.repo.Save(ctx, &sess); err != nil {
		return domsess.Session{}, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

// Track appends one word-count segment to an open session.
func (s *Service) Track(ctx context.Context, userID, sessionID string, seg domsess.Segment) (domsess.Session, error) {
	sess, err := s.repo.Get(ctx, userID, sessionID)
	if err != nil {
		return domsess.Session{}, err
	}

	updated, err := sess.WithSegment(seg)
	if err != nil {
		return domsess.Session{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if err := s.repo.Save(ctx, &updated); err != nil {
		return domsess.Session{}, fmt.Errorf("save session: %w", err)
	}
	return updated, nil
}

// End closes a session and computes its flow statistic.
func (s *Service) End(ctx context.Context, userID, sessionID string) (domsess.Session, error) {
	sess, err := s.repo.Get(ctx, userID, sessionID)
	if err != nil {
		return domsess.Session{}, err
	}
	if sess.Closed() {
		return domsess.Session{}, fmt.Errorf("%w: session already closed", domain.ErrInvalidInput)
	}

	closed := sess.Close()
	if err := s.repo.Save(ctx, &closed); err != nil {
		return domsess.Session{}, fmt.Errorf("save session: %w", err)
	}

	s.logger.Info("writing session closed",
		zap.String("session_id", sessionID),
		zap.String("user_id", userID),
		zap.Int("segments", len(closed.Segments())),
		zap.Float64("flow", closed.Flow()),
	)
	return closed, nil
}

// List returns all of a user's sessions.
func (s *Service) List(ctx context.Context, userID string) ([]domsess.Session, error) {
	return s.repo.ListByUser(ctx, userID)
}
