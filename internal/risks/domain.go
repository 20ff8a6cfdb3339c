// Package risks manages the per-project risk register. A risk's rating is
// derived from its likelihood and consequence on a 5x5 matrix; approval moves
// it to the accepted status.
package risks

import "time"

// Status values for a register entry.
const (
	StatusOpen     = "open"
	StatusAccepted = "accepted"
	StatusTreated  = "treated"
	StatusClosed   = "closed"
)

// Rating bands derived from the 5x5 matrix.
const (
	BandLow      = "low"
	BandModerate = "moderate"
	BandHigh     = "high"
	BandExtreme  = "extreme"
)

// Risk represents one register entry.
type Risk struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Statement   string    `json:"statement"`
	Likelihood  int       `json:"likelihood"`
	Consequence int       `json:"consequence"`
	Score       int       `json:"score"`
	Band        string    `json:"band"`
	OwnerID     string    `json:"owner_id"`
	Treatment   string    `json:"treatment,omitempty"`
	Status      string    `json:"status"`
	IssueID     string    `json:"issue_id,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateRiskRequest is the payload for adding a risk.
type CreateRiskRequest struct {
	Statement   string `json:"statement" validate:"required,min=1,max=2000"`
	Likelihood  int    `json:"likelihood" validate:"required,min=1,max=5"`
	Consequence int    `json:"consequence" validate:"required,min=1,max=5"`
	OwnerID     string `json:"owner_id" validate:"required"`
	Treatment   string `json:"treatment" validate:"max=2000"`
}

// UpdateRiskRequest is the payload for editing a risk.
type UpdateRiskRequest struct {
	Statement   string `json:"statement" validate:"required,min=1,max=2000"`
	Likelihood  int    `json:"likelihood" validate:"required,min=1,max=5"`
	Consequence int    `json:"consequence" validate:"required,min=1,max=5"`
	OwnerID     string `json:"owner_id" validate:"required"`
	Treatment   string `json:"treatment" validate:"max=2000"`
	Status      string `json:"status" validate:"required,oneof=open accepted treated closed"`
}

// Rate derives the matrix score and band from likelihood and consequence,
// both on a 1..5 scale.
func Rate(likelihood, consequence int) (score int, band string) {
	score = likelihood * consequence
	switch {
	case score >= 15:
		band = BandExtreme
	case score >= 10:
		band = BandHigh
	case score >= 5:
		band = BandModerate
	default:
		band = BandLow
	}
	return score, band
}
