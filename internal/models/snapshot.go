package models

import "time"

// EntityKind names a record collection.
type EntityKind string

const (
	KindUsers       EntityKind = "users"
	KindCurricula   EntityKind = "curricula"
	KindClasses     EntityKind = "classes"
	KindSessions    EntityKind = "weekly_sessions"
	KindEnrollments EntityKind = "enrollments"
	KindSubmissions EntityKind = "submissions"
	KindQuestions   EntityKind = "questions"
	KindAnswers     EntityKind = "answers"
	KindAdminLogs   EntityKind = "admin_logs"
)

// Snapshot is the complete state of the store at one commit.
type Snapshot struct {
	Version     int                  `json:"version" yaml:"version"`
	SavedAt     time.Time            `json:"saved_at" yaml:"saved_at"`
	Sequence    uint64               `json:"sequence" yaml:"sequence"`
	LastIDs     map[EntityKind]int64 `json:"last_ids" yaml:"last_ids"`
	Users       []User               `json:"users" yaml:"users"`
	Curricula   []Curriculum         `json:"curricula" yaml:"curricula"`
	Classes     []Class              `json:"classes" yaml:"classes"`
	Sessions    []WeeklySession      `json:"weekly_sessions" yaml:"weekly_sessions"`
	Enrollments []Enrollment         `json:"enrollments" yaml:"enrollments"`
	Submissions []Submission         `json:"submissions" yaml:"submissions"`
	Questions   []Question           `json:"questions" yaml:"questions"`
	Answers     []Answer             `json:"answers" yaml:"answers"`
	AdminLogs   []AdminLog           `json:"admin_logs" yaml:"admin_logs"`
}
