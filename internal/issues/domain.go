// Package issues manages the per-project issue register. An accepted issue
// may be converted into a risk register entry.
package issues

import "time"

// Status values for an issue. Converted and closed are terminal.
const (
	StatusOpen      = "open"
	StatusInReview  = "in_review"
	StatusAccepted  = "accepted"
	StatusConverted = "converted"
	StatusClosed    = "closed"
)

// Issue represents one register entry.
type Issue struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Description string    `json:"description"`
	RaisedBy    string    `json:"raised_by"`
	Status      string    `json:"status"`
	RiskID      string    `json:"risk_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateIssueRequest is the payload for raising an issue.
type CreateIssueRequest struct {
	Description string `json:"description" validate:"required,min=1,max=2000"`
}

// UpdateIssueRequest is the payload for editing an issue.
type UpdateIssueRequest struct {
	Description string `json:"description" validate:"required,min=1,max=2000"`
	Status      string `json:"status" validate:"required,oneof=open in_review accepted closed"`
}
