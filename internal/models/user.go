package models

import "time"

// UserRole represents the available roles of platform users.
type UserRole string

const (
	RoleStudent   UserRole = "student"
	RoleProfessor UserRole = "professor"
	RoleAdmin     UserRole = "admin"
)

// UserStatus captures account availability.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

// User represents an account of the course platform.
type User struct {
	ID            int64      `json:"id" yaml:"id"`
	Email         string     `json:"email" yaml:"email"`
	Name          string     `json:"name" yaml:"name"`
	Role          UserRole   `json:"role" yaml:"role"`
	Status        UserStatus `json:"status" yaml:"status"`
	PasswordHash  string     `json:"password_hash,omitempty" yaml:"password_hash,omitempty"`
	Phone         string     `json:"phone,omitempty" yaml:"phone,omitempty"`
	Department    string     `json:"department,omitempty" yaml:"department,omitempty"`
	StudentNumber string     `json:"student_number,omitempty" yaml:"student_number,omitempty"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty" yaml:"last_login_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" yaml:"updated_at"`
}

// NewUser carries the fields required to create a user.
type NewUser struct {
	Email         string
	Name          string
	Role          UserRole
	Status        UserStatus
	PasswordHash  string
	Phone         string
	Department    string
	StudentNumber string
}

// UserPatch lists the user fields that may change; nil fields are left as is.
type UserPatch struct {
	Email         *string
	Name          *string
	Role          *UserRole
	Status        *UserStatus
	PasswordHash  *string
	Phone         *string
	Department    *string
	StudentNumber *string
	LastLoginAt   *time.Time
}
