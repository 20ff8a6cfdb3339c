// Package audit records administrative actions in an append-only log and
// serves the timeline view over it.
package audit

import "time"

// Actions written by the user lifecycle and its reconciliation jobs.
const (
	ActionUserCreated             = "user_created"
	ActionUserUpdated             = "user_updated"
	ActionUserDeactivated         = "user_deactivated"
	ActionUserReactivated         = "user_reactivated"
	ActionUserDeleted             = "user_deleted"
	ActionUserAutoDeletedFromAuth = "user_auto_deleted_from_auth"
	ActionUserAuthDeletionFailed  = "user_auth_deletion_failed"
)

// Entry represents a record stored in audit_logs. Entries are immutable once
// written.
type Entry struct {
	ID           string
	Action       string
	TargetUserID string
	PerformedBy  string
	Details      map[string]any
	At           time.Time
}

// TimelineFilters narrows a timeline query.
type TimelineFilters struct {
	From     time.Time
	To       time.Time
	Action   string
	Actor    string
	Page     int
	PageSize int
}

// PagingInfo describes the window returned by a timeline query.
type PagingInfo struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasNext  bool `json:"has_next"`
	PrevPage int  `json:"prev_page,omitempty"`
	NextPage int  `json:"next_page,omitempty"`
}
