// Package workgroups manages named working groups within a project and their
// scheduled meetings.
package workgroups

import "time"

// Group represents a working group.
type Group struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
	MemberIDs []string  `json:"member_ids"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Meeting represents a scheduled working group meeting.
type Meeting struct {
	ID              string    `json:"id"`
	GroupID         string    `json:"group_id"`
	StartsAt        time.Time `json:"starts_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Agenda          string    `json:"agenda,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// SaveGroupRequest is the payload for creating or updating a group.
type SaveGroupRequest struct {
	Name      string   `json:"name" validate:"required,min=1,max=200"`
	MemberIDs []string `json:"member_ids" validate:"required,min=1"`
}

// ScheduleMeetingRequest is the payload for scheduling a meeting.
type ScheduleMeetingRequest struct {
	StartsAt        time.Time `json:"starts_at" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,min=5,max=480"`
	Agenda          string    `json:"agenda" validate:"max=4000"`
}
