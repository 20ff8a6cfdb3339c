package rbac

import "strings"

// LegacyProfile carries every representation of role assignment that has
// existed in the stored user schema. Older records hold a single role name
// nested under the profile, newer ones a top-level role or a roles array, and
// one generation encoded admin access as a boolean flag. The resolver
// reconciles them; canonical storage going forward is the roles array, with
// the other fields treated as read-only migration inputs.
type LegacyProfile struct {
	Email          string
	ProfileRole    string
	TopLevelRole   string
	CanManageUsers *bool
	Roles          []string
}

// Resolver reconciles legacy role representations into a single role set.
type Resolver struct {
	superusers map[string]struct{}
}

// NewResolver constructs a Resolver. superuserEmails is the last-resort
// allowlist: a matching email resolves to Admin when no stored representation
// yields a role.
func NewResolver(superuserEmails []string) *Resolver {
	set := make(map[string]struct{}, len(superuserEmails))
	for _, email := range superuserEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			set[email] = struct{}{}
		}
	}
	return &Resolver{superusers: set}
}

// Resolve reconciles a legacy profile into a role set using the fixed
// precedence: profile role, then top-level role, then the canManageUsers
// flag, then the roles array, then the superuser email allowlist. The first
// representation that yields at least one recognized role wins; changing this
// order silently changes who holds Admin access.
func (r *Resolver) Resolve(p LegacyProfile) []Role {
	if role, ok := ParseRole(p.ProfileRole); ok {
		return []Role{role}
	}
	if role, ok := ParseRole(p.TopLevelRole); ok {
		return []Role{role}
	}
	if p.CanManageUsers != nil && *p.CanManageUsers {
		return []Role{RoleAdmin}
	}
	if roles := parseRoles(p.Roles); len(roles) > 0 {
		return roles
	}
	if _, ok := r.superusers[strings.ToLower(strings.TrimSpace(p.Email))]; ok {
		return []Role{RoleAdmin}
	}
	return nil
}

func parseRoles(names []string) []Role {
	seen := make(map[Role]struct{}, len(names))
	roles := make([]Role, 0, len(names))
	for _, name := range names {
		role, ok := ParseRole(name)
		if !ok {
			// Unknown names are silently powerless.
			continue
		}
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}
		roles = append(roles, role)
	}
	return roles
}
