package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func boolPtr(b bool) *bool { return &b }

func TestResolverPrecedence(t *testing.T) {
	resolver := NewResolver([]string{"root@spoirmm.local"})

	tests := []struct {
		name    string
		profile LegacyProfile
		want    []Role
	}{
		{
			name:    "profile role wins over everything",
			profile: LegacyProfile{ProfileRole: "Viewer", TopLevelRole: "Admin", CanManageUsers: boolPtr(true), Roles: []string{"Risk Owner"}},
			want:    []Role{RoleViewer},
		},
		{
			name:    "top-level role next",
			profile: LegacyProfile{TopLevelRole: "Risk Plan Sponsor", CanManageUsers: boolPtr(true), Roles: []string{"Viewer"}},
			want:    []Role{RoleRiskPlanSponsor},
		},
		{
			name:    "manage-users flag maps to admin",
			profile: LegacyProfile{CanManageUsers: boolPtr(true), Roles: []string{"Viewer"}},
			want:    []Role{RoleAdmin},
		},
		{
			name:    "false flag does not short-circuit",
			profile: LegacyProfile{CanManageUsers: boolPtr(false), Roles: []string{"Working Group Member", "Risk Owner"}},
			want:    []Role{RoleWorkingGroupMember, RoleRiskOwner},
		},
		{
			name:    "roles array preserved in order, deduplicated",
			profile: LegacyProfile{Roles: []string{"Risk Owner", "Viewer", "Risk Owner"}},
			want:    []Role{RoleRiskOwner, RoleViewer},
		},
		{
			name:    "superuser email fallback",
			profile: LegacyProfile{Email: "Root@SPOIRMM.local"},
			want:    []Role{RoleAdmin},
		},
		{
			name:    "nothing resolves to empty",
			profile: LegacyProfile{Email: "nobody@example.com"},
			want:    nil,
		},
		{
			name:    "unrecognized single role falls through to array",
			profile: LegacyProfile{ProfileRole: "Superhero", Roles: []string{"Viewer"}},
			want:    []Role{RoleViewer},
		},
		{
			name:    "array of unknown names falls through to email",
			profile: LegacyProfile{Email: "root@spoirmm.local", Roles: []string{"Superhero"}},
			want:    []Role{RoleAdmin},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, resolver.Resolve(tc.profile))
		})
	}
}

func TestParseRoleTrimsWhitespace(t *testing.T) {
	role, ok := ParseRole("  Risk Plan Coordinator ")
	assert.True(t, ok)
	assert.Equal(t, RoleRiskPlanCoordinator, role)

	_, ok = ParseRole("risk plan coordinator")
	assert.False(t, ok, "role names are case sensitive by contract")
}
