package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allScopes() []Scope {
	return []Scope{ScopeFull, ScopeView, ScopeEdit, ScopeCreate, ScopeManage, ScopeApprove, ScopeEditAssigned}
}

func TestFullScopeImpliesWholeNamespace(t *testing.T) {
	for _, role := range Roles() {
		fullNamespaces := make(map[Namespace]bool)
		for _, p := range GrantsFor(role) {
			if p.Scope == ScopeFull {
				fullNamespaces[p.Namespace] = true
			}
		}
		for ns := range fullNamespaces {
			for _, scope := range allScopes() {
				assert.True(t, HasPermission([]Role{role}, Permission{ns, scope}),
					"role %s holds %s_full but denied %s_%s", role, ns, ns, scope)
			}
		}
	}
}

func TestNoImplicitCrossNamespaceGrants(t *testing.T) {
	for _, role := range Roles() {
		explicit := make(map[Permission]bool)
		fullNamespaces := make(map[Namespace]bool)
		for _, p := range GrantsFor(role) {
			explicit[p] = true
			if p.Scope == ScopeFull {
				fullNamespaces[p.Namespace] = true
			}
		}
		for _, ns := range Namespaces() {
			for _, scope := range allScopes() {
				perm := Permission{ns, scope}
				want := explicit[perm] || fullNamespaces[ns]
				assert.Equal(t, want, HasPermission([]Role{role}, perm),
					"role %s permission %s", role, perm)
			}
		}
	}
}

func TestEmptyRoleSetDeniesEverything(t *testing.T) {
	for _, ns := range Namespaces() {
		for _, scope := range allScopes() {
			assert.False(t, HasPermission(nil, Permission{ns, scope}))
			assert.False(t, HasPermission([]Role{}, Permission{ns, scope}))
		}
	}
}

func TestUnknownRoleIsSilentlyPowerless(t *testing.T) {
	ghost := Role("Project Wizard")
	assert.False(t, HasPermission([]Role{ghost}, Permission{Namespace: NamespaceUserManagement, Scope: ScopeView}))
	// Known role alongside unknown still works.
	assert.True(t, HasPermission([]Role{ghost, RoleAdmin}, Permission{Namespace: NamespaceUserManagement, Scope: ScopeView}))
}

func TestUnknownPermissionStringNeverMatches(t *testing.T) {
	_, ok := ParsePermission("payments_view")
	assert.False(t, ok)
	_, ok = ParsePermission("risk_register_destroy")
	assert.False(t, ok)
	_, ok = ParsePermission("")
	assert.False(t, ok)
}

func TestParsePermissionRoundTrip(t *testing.T) {
	for _, ns := range Namespaces() {
		for _, scope := range allScopes() {
			perm := Permission{ns, scope}
			parsed, ok := ParsePermission(perm.String())
			require.True(t, ok, perm.String())
			assert.Equal(t, perm, parsed)
		}
	}
}

func TestHasAnyAndAllDeriveFromHasPermission(t *testing.T) {
	roles := []Role{RoleRiskOwner}
	view := Permission{Namespace: NamespaceRiskRegister, Scope: ScopeView}
	editAssigned := Permission{Namespace: NamespaceRiskRegister, Scope: ScopeEditAssigned}
	manageUsers := Permission{Namespace: NamespaceUserManagement, Scope: ScopeManage}

	assert.True(t, HasAnyPermission(roles, manageUsers, view))
	assert.False(t, HasAnyPermission(roles, manageUsers))
	assert.True(t, HasAllPermissions(roles, view, editAssigned))
	assert.False(t, HasAllPermissions(roles, view, manageUsers))

	// Empty lists: any is vacuously true, all is vacuously true.
	assert.True(t, HasAnyPermission(roles))
	assert.True(t, HasAllPermissions(roles))
}

func TestViewerHasNoWriteAccess(t *testing.T) {
	viewer := []Role{RoleViewer}
	for _, ns := range Namespaces() {
		for _, scope := range []Scope{ScopeEdit, ScopeCreate, ScopeManage, ScopeApprove, ScopeFull} {
			assert.False(t, HasPermission(viewer, Permission{ns, scope}),
				"viewer unexpectedly granted %s_%s", ns, scope)
		}
	}
}
