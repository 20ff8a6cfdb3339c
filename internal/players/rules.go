package players

import "golang.org/x/text/cases"

// combination is one allowed (Type, Role, Nature) triple.
type combination struct {
	Type   Type
	Role   string
	Nature EntityNature
}

// combinationTable is the fixed whitelist of valid stakeholder combinations.
// It covers all eight types; order within a type drives the option lists the
// UI presents, so the first entry per type is the default after a type change.
var combinationTable = []combination{
	{TypeRecipient, "Recipient of Benefit", NatureIndividual},
	{TypeRecipient, "Recipient Family Member", NatureIndividual},
	{TypeProvider, "Provider of Benefit", NatureIndividual},
	{TypeProvider, "Provider of Benefit", NatureOrganization},
	{TypeStaff, "Staff Member (Benefit Enabler)", NatureIndividual},
	{TypeSupplier, "Supplier (Benefit Enabler)", NatureIndividual},
	{TypeSupplier, "Supplier (Benefit Enabler)", NatureOrganization},
	{TypeRegulator, "Market Regulator", NatureOrganization},
	{TypeRegulator, "Industry Regulator", NatureOrganization},
	{TypeRepresentative, "Recipient Representative", NatureIndividual},
	{TypeRepresentative, "Recipient Advocate", NatureOrganization},
	{TypeCommunity, "Community Member", NatureIndividual},
	{TypeCommunity, "Community Group", NatureOrganization},
	{TypeFunder, "Purchaser of Benefit", NatureOrganization},
	{TypeFunder, "Funding Body", NatureOrganization},
	{TypeFunder, "Insurer", NatureOrganization},
}

// ValidCombination reports whether the (type, role, nature) triple appears in
// the whitelist. Invalid combinations are a validation outcome, not an error.
func ValidCombination(t Type, role string, nature EntityNature) bool {
	for _, c := range combinationTable {
		if c.Type == t && c.Role == role && c.Nature == nature {
			return true
		}
	}
	return false
}

// RoleOptions returns the ordered, deduplicated role options allowed for a
// type. Every defined type has at least one option.
func RoleOptions(t Type) []string {
	var roles []string
	seen := make(map[string]struct{})
	for _, c := range combinationTable {
		if c.Type != t {
			continue
		}
		if _, dup := seen[c.Role]; dup {
			continue
		}
		seen[c.Role] = struct{}{}
		roles = append(roles, c.Role)
	}
	return roles
}

// NatureOptions returns the ordered, deduplicated entity natures allowed for
// a type.
func NatureOptions(t Type) []EntityNature {
	var natures []EntityNature
	seen := make(map[EntityNature]struct{})
	for _, c := range combinationTable {
		if c.Type != t {
			continue
		}
		if _, dup := seen[c.Nature]; dup {
			continue
		}
		seen[c.Nature] = struct{}{}
		natures = append(natures, c.Nature)
	}
	return natures
}

// ApplyTypeChange resets role and nature to the first valid combination for
// the new type. This is derived state, not a stored invariant: it must be
// re-applied every time the type changes in a draft.
func ApplyTypeChange(p *Player, newType Type) {
	p.Type = newType
	for _, c := range combinationTable {
		if c.Type == newType {
			p.Role = c.Role
			p.Nature = c.Nature
			return
		}
	}
	p.Role = ""
	p.Nature = ""
}

// ParseType resolves a stored type name. Unknown names report ok=false.
func ParseType(name string) (Type, bool) {
	for _, t := range Types() {
		if string(t) == name {
			return t, true
		}
	}
	return "", false
}

// ParseNature resolves a stored entity nature.
func ParseNature(name string) (EntityNature, bool) {
	switch EntityNature(name) {
	case NatureIndividual:
		return NatureIndividual, true
	case NatureOrganization:
		return NatureOrganization, true
	}
	return "", false
}

var nameFolder = cases.Fold()

// IsDuplicate reports whether an existing player (other than the candidate
// itself, matched by ID) shares the candidate's name case-insensitively along
// with the same role and nature.
func IsDuplicate(candidate Player, existing []Player) bool {
	folded := nameFolder.String(candidate.Name)
	for _, other := range existing {
		if other.ID != "" && other.ID == candidate.ID {
			continue
		}
		if other.Role != candidate.Role || other.Nature != candidate.Nature {
			continue
		}
		if nameFolder.String(other.Name) == folded {
			return true
		}
	}
	return false
}
