package models

import "time"

// Session records one revise run over a document tree.
type Session struct {
	ID            string
	Root          string
	StartedAt     time.Time
	FinishedAt    time.Time
	FilesQueued   int
	FilesResolved int
	Quit          bool
}

// Decision records a single accept/reject made during a session. Quits
// are session-level control, not decisions, and are never recorded here.
type Decision struct {
	ID        string
	SessionID string
	File      string
	Kind      string
	Action    string
	Content   string
	CreatedAt time.Time
}
