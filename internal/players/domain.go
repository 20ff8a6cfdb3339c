// Package players manages the stakeholder registry of a risk-management
// project and the rule tables governing which stakeholder combinations are
// valid.
package players

import "time"

// Type is one of the eight stakeholder categories of the planning model.
type Type string

const (
	TypeRecipient      Type = "Recipient"
	TypeProvider       Type = "Provider"
	TypeStaff          Type = "Staff"
	TypeSupplier       Type = "Supplier"
	TypeRegulator      Type = "Regulator"
	TypeRepresentative Type = "Representative"
	TypeCommunity      Type = "Community"
	TypeFunder         Type = "Funder"
)

// Types returns every player type in display order.
func Types() []Type {
	return []Type{
		TypeRecipient,
		TypeProvider,
		TypeStaff,
		TypeSupplier,
		TypeRegulator,
		TypeRepresentative,
		TypeCommunity,
		TypeFunder,
	}
}

// EntityNature distinguishes individual stakeholders from organizations.
type EntityNature string

const (
	NatureIndividual   EntityNature = "Individual"
	NatureOrganization EntityNature = "Organization"
)

// Player is a stakeholder record participating in a risk-management project.
// The (Type, Role, Nature) triple must appear in the fixed whitelist of valid
// combinations, and no two players in a project may share the same
// case-insensitive name with equal role and nature.
type Player struct {
	ID           string       `json:"id"`
	ProjectID    string       `json:"project_id"`
	Name         string       `json:"name"`
	Type         Type         `json:"type"`
	Role         string       `json:"role"`
	Nature       EntityNature `json:"nature"`
	Relationship string       `json:"relationship,omitempty"`
	Notes        string       `json:"notes,omitempty"`
	RiskRefs     []string     `json:"risk_refs,omitempty"`
	CreatedBy    string       `json:"created_by,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
