package models

import "time"

// AdminAction constants represent actions recorded in the audit journal.
const (
	AdminActionUserCreate       = "USER_CREATE"
	AdminActionUserUpdate       = "USER_UPDATE"
	AdminActionUserDelete       = "USER_DELETE"
	AdminActionCurriculumCreate = "CURRICULUM_CREATE"
	AdminActionCurriculumUpdate = "CURRICULUM_UPDATE"
	AdminActionCurriculumDelete = "CURRICULUM_DELETE"
	AdminActionClassCreate      = "CLASS_CREATE"
	AdminActionClassDelete      = "CLASS_DELETE"
	AdminActionClassRestore     = "CLASS_RESTORE"
	AdminActionSessionStart     = "SESSION_START"
	AdminActionSessionEnd       = "SESSION_END"
	AdminActionEnroll           = "ENROLL"
	AdminActionWithdraw         = "WITHDRAW"
)

// AdminLog is an immutable audit journal entry.
type AdminLog struct {
	ID         int64     `json:"id" yaml:"id"`
	AdminID    int64     `json:"admin_id" yaml:"admin_id"`
	Action     string    `json:"action" yaml:"action"`
	TargetType string    `json:"target_type,omitempty" yaml:"target_type,omitempty"`
	TargetID   *int64    `json:"target_id,omitempty" yaml:"target_id,omitempty"`
	Reason     string    `json:"reason,omitempty" yaml:"reason,omitempty"`
	Details    string    `json:"details,omitempty" yaml:"details,omitempty"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
}

// NewAdminLog carries the fields of a journal entry.
type NewAdminLog struct {
	AdminID    int64
	Action     string
	TargetType string
	TargetID   *int64
	Reason     string
	Details    string
}
