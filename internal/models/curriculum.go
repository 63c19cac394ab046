package models

import "time"

// CurriculumStatus marks whether a curriculum accepts new classes.
type CurriculumStatus string

const (
	CurriculumStatusActive   CurriculumStatus = "active"
	CurriculumStatusArchived CurriculumStatus = "archived"
)

// Week bounds for a curriculum.
const (
	MinCurriculumWeeks = 1
	MaxCurriculumWeeks = 52
)

// Curriculum is a reusable weekly course plan.
type Curriculum struct {
	ID          int64            `json:"id" yaml:"id"`
	Name        string           `json:"name" yaml:"name"`
	Language    string           `json:"language" yaml:"language"`
	Weeks       int              `json:"weeks" yaml:"weeks"`
	Status      CurriculumStatus `json:"status" yaml:"status"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	CreatedAt   time.Time        `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" yaml:"updated_at"`
}

// NewCurriculum carries the fields required to create a curriculum.
type NewCurriculum struct {
	Name        string
	Language    string
	Weeks       int
	Status      CurriculumStatus
	Description string
}

// CurriculumPatch lists the mutable curriculum fields.
type CurriculumPatch struct {
	Name        *string
	Language    *string
	Weeks       *int
	Status      *CurriculumStatus
	Description *string
}
