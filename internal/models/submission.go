package models

import "time"

// Submission is a student's answer to a weekly task.
type Submission struct {
	ID          int64     `json:"id" yaml:"id"`
	StudentID   int64     `json:"student_id" yaml:"student_id"`
	TaskID      int64     `json:"task_id" yaml:"task_id"`
	ClassID     int64     `json:"class_id" yaml:"class_id"`
	Week        int       `json:"week" yaml:"week"`
	Ordinal     int       `json:"ordinal" yaml:"ordinal"`
	IsFirst     bool      `json:"is_first" yaml:"is_first"`
	Score       *float64  `json:"score,omitempty" yaml:"score,omitempty"`
	Content     string    `json:"content,omitempty" yaml:"content,omitempty"`
	SubmittedAt time.Time `json:"submitted_at" yaml:"submitted_at"`
}

// NewSubmission carries the fields of a new submission. Ordinal and IsFirst
// are derived by the store.
type NewSubmission struct {
	StudentID int64
	TaskID    int64
	ClassID   int64
	Week      int
	Score     *float64
	Content   string
}

// SubmissionPatch lists the mutable submission fields.
type SubmissionPatch struct {
	Score   *float64
	Content *string
}
