// Package projects manages risk-management plan projects and the dashboard
// summary over their registers.
package projects

import "time"

// Status values for a plan project.
const (
	StatusDraft    = "draft"
	StatusActive   = "active"
	StatusComplete = "complete"
	StatusArchived = "archived"
)

// Project represents a risk-management plan.
type Project struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Organization  string     `json:"organization"`
	SponsorID     string     `json:"sponsor_id"`
	CoordinatorID string     `json:"coordinator_id"`
	Status        string     `json:"status"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	CreatedBy     string     `json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Dashboard aggregates the registers of one project.
type Dashboard struct {
	Project    *Project `json:"project"`
	Players    int64    `json:"players"`
	OpenIssues int64    `json:"open_issues"`
	Risks      int64    `json:"risks"`
	Workgroups int64    `json:"workgroups"`
}

// CreateProjectRequest is the payload for creating a project.
type CreateProjectRequest struct {
	Title         string     `json:"title" validate:"required,min=1,max=300"`
	Organization  string     `json:"organization" validate:"required,min=1,max=300"`
	SponsorID     string     `json:"sponsor_id" validate:"required"`
	CoordinatorID string     `json:"coordinator_id" validate:"required"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
}

// UpdateProjectRequest is the payload for updating a project.
type UpdateProjectRequest struct {
	Title         string     `json:"title" validate:"required,min=1,max=300"`
	Organization  string     `json:"organization" validate:"required,min=1,max=300"`
	SponsorID     string     `json:"sponsor_id" validate:"required"`
	CoordinatorID string     `json:"coordinator_id" validate:"required"`
	Status        string     `json:"status" validate:"required,oneof=draft active complete archived"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
}
