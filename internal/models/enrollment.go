package models

import "time"

// Enrollment captures a student's membership of a class. A (student, class)
// pair owns at most one record; withdrawing and re-enrolling toggle Active.
type Enrollment struct {
	ID          int64      `json:"id" yaml:"id"`
	StudentID   int64      `json:"student_id" yaml:"student_id"`
	ClassID     int64      `json:"class_id" yaml:"class_id"`
	EnrolledAt  time.Time  `json:"enrolled_at" yaml:"enrolled_at"`
	WithdrawnAt *time.Time `json:"withdrawn_at,omitempty" yaml:"withdrawn_at,omitempty"`
	Active      bool       `json:"active" yaml:"active"`
}

// EnrollmentPatch lists the mutable enrollment fields. Setting Active false
// stamps the withdrawal time; setting it true clears it.
type EnrollmentPatch struct {
	Active     *bool
	EnrolledAt *time.Time
}
