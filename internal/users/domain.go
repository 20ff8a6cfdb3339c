// Package users owns user profiles and their lifecycle. A profile is the
// application-facing record; its authentication identity is managed by the
// auth package and kept consistent by the reconciliation jobs.
package users

import "time"

// Profile represents a stored user record. The role columns mirror every
// representation that has existed in the schema; the rbac resolver reconciles
// them. New writes land in Roles only.
type Profile struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	DisplayName    string     `json:"display_name"`
	Organization   string     `json:"organization,omitempty"`
	IsActive       bool       `json:"is_active"`
	ProfileRole    string     `json:"profile_role,omitempty"`
	TopLevelRole   string     `json:"top_level_role,omitempty"`
	CanManageUsers *bool      `json:"can_manage_users,omitempty"`
	Roles          []string   `json:"roles"`
	ProjectIDs     []string   `json:"project_ids"`
	CreatedBy      string     `json:"created_by,omitempty"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CreateUserRequest is the payload for creating a user.
type CreateUserRequest struct {
	Email        string   `json:"email" validate:"required,email"`
	DisplayName  string   `json:"display_name" validate:"required,min=1,max=200"`
	Organization string   `json:"organization" validate:"max=300"`
	Roles        []string `json:"roles" validate:"required,min=1"`
}

// UpdateUserRequest is the payload for updating a user. Role fields replace
// the stored set wholesale.
type UpdateUserRequest struct {
	DisplayName  string   `json:"display_name" validate:"required,min=1,max=200"`
	Organization string   `json:"organization" validate:"max=300"`
	Roles        []string `json:"roles" validate:"required,min=1"`
	ProjectIDs   []string `json:"project_ids"`
}

// DeleteResult reports the outcome of a complete deletion.
type DeleteResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	DeletedUserID string `json:"deletedUserId"`
}
