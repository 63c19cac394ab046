package models

import "time"

// SessionStatus is the state of a weekly session.
type SessionStatus string

const (
	SessionNotStarted SessionStatus = "not_started"
	SessionInProgress SessionStatus = "in_progress"
	SessionEnded      SessionStatus = "ended"
)

// DefaultSessionDuration is how long a session stays open before auto expiry.
const DefaultSessionDuration = 24 * time.Hour

// WeeklySession is one week of a class.
type WeeklySession struct {
	ID        int64         `json:"id" yaml:"id"`
	ClassID   int64         `json:"class_id" yaml:"class_id"`
	Week      int           `json:"week" yaml:"week"`
	Status    SessionStatus `json:"status" yaml:"status"`
	StartedAt *time.Time    `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	EndedAt   *time.Time    `json:"ended_at,omitempty" yaml:"ended_at,omitempty"`
	AutoEndAt *time.Time    `json:"auto_end_at,omitempty" yaml:"auto_end_at,omitempty"`
	CreatedAt time.Time     `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" yaml:"updated_at"`
}

// Expired reports whether an in-progress session passed its auto end time.
func (s WeeklySession) Expired(now time.Time) bool {
	return s.Status == SessionInProgress && s.AutoEndAt != nil && !s.AutoEndAt.After(now)
}
