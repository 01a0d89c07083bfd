package domain

import "time"

// Session is a completed conversation as persisted to the archive. Turns is
// the transcript as recorded; synthetic call-history turns never appear here.
type Session struct {
	ID          string
	Root        string
	StartedAt   time.Time
	EndedAt     time.Time
	PinnedPaths []string
	Turns       []Turn
}

type SessionSummary struct {
	ID        string
	Root      string
	StartedAt time.Time
	EndedAt   time.Time
	TurnCount int
}

func (s Session) Summary() SessionSummary {
	return SessionSummary{
		ID:        s.ID,
		Root:      s.Root,
		StartedAt: s.StartedAt,
		EndedAt:   s.EndedAt,
		TurnCount: len(s.Turns),
	}
}
