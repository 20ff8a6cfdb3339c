package rbac

// grantTable fixes which permissions each role holds. It is immutable
// configuration assembled once at package init; nothing mutates it at runtime.
// A "full" grant in a namespace implies every scope of that namespace, and
// only that namespace; no role ever gains cross-namespace access implicitly.
var grantTable = map[Role][]Permission{
	RoleAdmin: {
		{NamespaceProjectPlanning, ScopeFull},
		{NamespaceIssuesList, ScopeFull},
		{NamespaceRiskRegister, ScopeFull},
		{NamespaceAdminSettings, ScopeFull},
		{NamespaceUserManagement, ScopeFull},
	},
	RoleRiskPlanSponsor: {
		{NamespaceProjectPlanning, ScopeView},
		{NamespaceProjectPlanning, ScopeApprove},
		{NamespaceIssuesList, ScopeView},
		{NamespaceRiskRegister, ScopeView},
		{NamespaceRiskRegister, ScopeApprove},
		{NamespaceAdminSettings, ScopeView},
	},
	RoleRiskPlanCoordinator: {
		{NamespaceProjectPlanning, ScopeFull},
		{NamespaceIssuesList, ScopeFull},
		{NamespaceRiskRegister, ScopeFull},
	},
	RoleWorkingGroupMember: {
		{NamespaceProjectPlanning, ScopeView},
		{NamespaceIssuesList, ScopeView},
		{NamespaceIssuesList, ScopeCreate},
		{NamespaceIssuesList, ScopeEdit},
		{NamespaceRiskRegister, ScopeView},
	},
	RoleRiskOwner: {
		{NamespaceProjectPlanning, ScopeView},
		{NamespaceIssuesList, ScopeView},
		{NamespaceRiskRegister, ScopeView},
		{NamespaceRiskRegister, ScopeEditAssigned},
	},
	RoleViewer: {
		{NamespaceProjectPlanning, ScopeView},
		{NamespaceIssuesList, ScopeView},
		{NamespaceRiskRegister, ScopeView},
	},
}

type permissionSet map[Permission]struct{}

var grants = func() map[Role]permissionSet {
	m := make(map[Role]permissionSet, len(grantTable))
	for role, perms := range grantTable {
		set := make(permissionSet, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		m[role] = set
	}
	return m
}()

// GrantsFor returns the permissions explicitly held by a role, in the fixed
// table order. Unknown roles return nil.
func GrantsFor(role Role) []Permission {
	perms := grantTable[role]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}
