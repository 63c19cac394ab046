package models

import "time"

// LifecycleState tells whether a record is visible by default.
type LifecycleState string

const (
	LifecycleActive  LifecycleState = "active"
	LifecycleDeleted LifecycleState = "deleted"
)

// Lifecycle is the soft-delete state of a class. DeletedAt is only set when
// State is LifecycleDeleted.
type Lifecycle struct {
	State     LifecycleState `json:"state" yaml:"state"`
	DeletedAt *time.Time     `json:"deleted_at,omitempty" yaml:"deleted_at,omitempty"`
}

// ActiveLifecycle returns the visible state.
func ActiveLifecycle() Lifecycle {
	return Lifecycle{State: LifecycleActive}
}

// DeletedLifecycle returns the soft-deleted state stamped with at.
func DeletedLifecycle(at time.Time) Lifecycle {
	return Lifecycle{State: LifecycleDeleted, DeletedAt: &at}
}

// Deleted reports whether the record was soft-deleted.
func (l Lifecycle) Deleted() bool {
	return l.State == LifecycleDeleted
}

// Class is a running instance of a curriculum taught by a professor.
type Class struct {
	ID           int64     `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	ProfessorID  int64     `json:"professor_id" yaml:"professor_id"`
	CurriculumID int64     `json:"curriculum_id" yaml:"curriculum_id"`
	InviteCode   string    `json:"invite_code" yaml:"invite_code"`
	Lifecycle    Lifecycle `json:"lifecycle" yaml:"lifecycle"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" yaml:"updated_at"`
}

// NewClass carries the fields required to create a class. An empty
// InviteCode asks the store to generate one.
type NewClass struct {
	Name         string
	ProfessorID  int64
	CurriculumID int64
	InviteCode   string
}

// ClassPatch lists the mutable class fields.
type ClassPatch struct {
	Name        *string
	ProfessorID *int64
	InviteCode  *string
}
