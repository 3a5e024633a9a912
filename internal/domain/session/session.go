// Package session tracks writing sessions and the per-session flow statistic.
package session

import (
	"fmt"
	"math"
	"time"
)

// Segment is one tracked slice of a writing session.
type Segment struct {
	Words   int `json:"words"`
	Seconds int `json:"seconds"`
}

// Session is a writing session: an open interval with appended segments.
type Session struct {
	id         string
	userID     string
	documentID string
	startedAt  time.Time
	segments   []Segment
	closed     bool
	flow       float64
}

// New validates and creates an open Session.
func New(id, userID, documentID string, startedAt time.Time) (Session, error) {
	if id == "" || userID == "" || documentID == "" {
		return Session{}, fmt.Errorf("session, user and document IDs are required")
	}
	return Session{id: id, userID: userID, documentID: documentID, startedAt: startedAt.UTC()}, nil
}

// Reconstruct creates a Session without validation (storage hydration).
func Reconstruct(
	id, userID, documentID string, startedAt time.Time,
	segments []Segment, closed bool, flow float64,
) Session {
	return Session{
		id: id, userID: userID, documentID: documentID, startedAt: startedAt,
		segments: segments, closed: closed, flow: flow,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// UserID returns the writing user's ID.
func (s *Session) UserID() string { return s.userID }

// DocumentID returns the document being written.
func (s *Session) DocumentID() string { return s.documentID }

// StartedAt returns the session start time.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// Segments returns the recorded segments.
func (s *Session) Segments() []Segment { return s.segments }

// Closed reports whether the session has ended.
func (s *Session) Closed() bool { return s.closed }

// Flow returns the flow statistic; meaningful only once closed.
func (s *Session) Flow() float64 { return s.flow }

// WithSegment returns a copy with one more segment appended.
func (s *Session) WithSegment(seg Segment) (Session, error) {
	if s.closed {
		return Session{}, fmt.Errorf("session already closed")
	}
	if seg.Words < 0 || seg.Seconds <= 0 {
		return Session{}, fmt.Errorf("segment needs non-negative words and positive seconds")
	}
	segments := append(append([]Segment{}, s.segments...), seg)
	return Session{
		id: s.id, userID: s.userID, documentID: s.documentID, startedAt: s.startedAt,
		segments: segments,
	}, nil
}

// Close returns a closed copy with the flow statistic computed.
func (s *Session) Close() Session {
	return Session{
		id: s.id, userID: s.userID, documentID: s.documentID, startedAt: s.startedAt,
		segments: s.segments, closed: true, flow: ComputeFlow(s.segments),
	}
}

// ComputeFlow scores a session in [0, 1] from its segment word rates.
// Flow is the fraction of active segments (any words written) damped by the
// coefficient of variation of the per-segment rates: steady output across
// segments scores higher than the same word count in bursts.
func ComputeFlow(segments []Segment) float64 {
	if len(segments) == 0 {
		return 0
	}

	rates := make([]float64, 0, len(segments))
	active := 0
	for _, seg := range segments {
		if seg.Seconds <= 0 {
			continue
		}
		if seg.Words > 0 {
			active++
		}
		rates = append(rates, float64(seg.Words)/float64(seg.Seconds))
	}
	if len(rates) == 0 {
		return 0
	}

	var sum float64
	for _, r := range rates {
		sum += r
	}
	mean := sum / float64(len(rates))
	if mean == 0 {
		return 0
	}

	var variance float64
	for _, r := range rates {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(rates))
	cv := math.Sqrt(variance) / mean

	activeShare := float64(active) / float64(len(rates))
	return activeShare / (1 + cv)
}
