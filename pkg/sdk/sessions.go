package draftzero

import (
	"context"
	"fmt"
	"time"

	domsess "github.com/draftzero/draftzero/internal/domain/session"
)

// Segment is one tracked slice of a writing session.
type Segment struct {
	Words   int
	Seconds int
}

// SessionInfo describes a writing session.
type SessionInfo struct {
	ID         string
	DocumentID string
	StartedAt  time.Time
	Segments   []Segment
	Closed     bool
	// Flow is the session flow statistic in [0, 1]; meaningful once Closed.
	Flow float64
}

// SessionService tracks writing sessions on behalf of one user.
type SessionService struct {
	userID string
	svc    sessionUseCase
	obs    *observer
}

// Sessions returns the session service acting as the given user.
func (c *Client) Sessions(userID string) *SessionService {
	return &SessionService{userID: userID, svc: c.sessSvc, obs: c.obs}
}

// Start opens a writing session on a document.
func (s *SessionService) Start(ctx context.Context, documentID string) (_ SessionInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("session.start", start, err) }()

	sess, err := s.svc.Start(ctx, s.userID, documentID)
	if err != nil {
		return SessionInfo{}, fmt.Errorf("start session: %w", err)
	}
	return fromInternalSession(&sess), nil
}

// Track appends one word-count segment to an open session.
func (s *SessionService) Track(ctx context.Context, sessionID string, seg Segment) (_ SessionInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("session.track", start, err) }()

	sess, err := s.svc.Track(ctx, s.userID, sessionID,
		domsess.Segment{Words: seg.Words, Seconds: seg.Seconds})
	if err != nil {
		return SessionInfo{}, fmt.Errorf("track session: %w", err)
	}
	return fromInternalSession(&sess), nil
}

// End closes a session and computes its flow statistic.
func (s *SessionService) End(ctx context.Context, sessionID string) (_ SessionInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("session.end", start, err) }()

	sess, err := s.svc.End(ctx, s.userID, sessionID)
	if err != nil {
		return SessionInfo{}, fmt.Errorf("end session: %w", err)
	}
	return fromInternalSession(&sess), nil
}

// List returns all of the acting user's sessions.
func (s *SessionService) List(ctx context.Context) (_ []SessionInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("session.list", start, err) }()

	sessions, err := s.svc.List(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	out := make([]SessionInfo, len(sessions))
	for i := range sessions {
		out[i] = fromInternalSession(&sessions[i])
	}
	return out, nil
}

func fromInternalSession(sess *domsess.Session) SessionInfo {
	segments := make([]Segment, len(sess.Segments()))
	for i, seg := range sess.Segments() {
		segments[i] = Segment{Words: seg.Words, Seconds: seg.Seconds}
	}
	return SessionInfo{
		ID:         sess.ID(),
		DocumentID: sess.DocumentID(),
		StartedAt:  sess.StartedAt(),
		Segments:   segments,
		Closed:     sess.Closed(),
		Flow:       sess.Flow(),
	}
}
