// Package rbac implements role-based access control for the risk planning
// platform. Roles and permissions are closed sets: a permission is a
// (namespace, scope) pair rather than a free-form string, so a typo can not
// silently widen or narrow access.
package rbac

import "strings"

// Role represents a high-level permission grouping assigned to users.
type Role string

const (
	RoleAdmin               Role = "Admin"
	RoleRiskPlanSponsor     Role = "Risk Plan Sponsor"
	RoleRiskPlanCoordinator Role = "Risk Plan Coordinator"
	RoleWorkingGroupMember  Role = "Working Group Member"
	RoleRiskOwner           Role = "Risk Owner"
	RoleViewer              Role = "Viewer"
)

// Roles returns every defined role in display order.
func Roles() []Role {
	return []Role{
		RoleAdmin,
		RoleRiskPlanSponsor,
		RoleRiskPlanCoordinator,
		RoleWorkingGroupMember,
		RoleRiskOwner,
		RoleViewer,
	}
}

// ParseRole resolves a stored role name to a Role. Unknown names report
// ok=false; they grant nothing but are never an error.
func ParseRole(name string) (Role, bool) {
	switch Role(strings.TrimSpace(name)) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleRiskPlanSponsor:
		return RoleRiskPlanSponsor, true
	case RoleRiskPlanCoordinator:
		return RoleRiskPlanCoordinator, true
	case RoleWorkingGroupMember:
		return RoleWorkingGroupMember, true
	case RoleRiskOwner:
		return RoleRiskOwner, true
	case RoleViewer:
		return RoleViewer, true
	}
	return "", false
}

// Namespace identifies one of the five functional areas of the application.
type Namespace string

const (
	NamespaceProjectPlanning Namespace = "project_planning"
	NamespaceIssuesList      Namespace = "issues_list"
	NamespaceRiskRegister    Namespace = "risk_register"
	NamespaceAdminSettings   Namespace = "admin_settings"
	NamespaceUserManagement  Namespace = "user_management"
)

// Namespaces returns every functional area.
func Namespaces() []Namespace {
	return []Namespace{
		NamespaceProjectPlanning,
		NamespaceIssuesList,
		NamespaceRiskRegister,
		NamespaceAdminSettings,
		NamespaceUserManagement,
	}
}

// Scope is the granularity suffix of a permission.
type Scope string

const (
	ScopeFull         Scope = "full"
	ScopeView         Scope = "view"
	ScopeEdit         Scope = "edit"
	ScopeCreate       Scope = "create"
	ScopeManage       Scope = "manage"
	ScopeApprove      Scope = "approve"
	ScopeEditAssigned Scope = "edit_assigned"
)

// Permission is a single named capability: a functional-area namespace plus
// an access scope. Its canonical string form is "<namespace>_<scope>".
type Permission struct {
	Namespace Namespace
	Scope     Scope
}

// String returns the canonical permission string, e.g. "risk_register_view".
func (p Permission) String() string {
	return string(p.Namespace) + "_" + string(p.Scope)
}

// ParsePermission parses a canonical permission string. The namespace prefix
// must match exactly one functional area; anything else reports ok=false.
func ParsePermission(s string) (Permission, bool) {
	for _, ns := range Namespaces() {
		prefix := string(ns) + "_"
		if !strings.HasPrefix(s, prefix) {
			continue
		}
		switch scope := Scope(strings.TrimPrefix(s, prefix)); scope {
		case ScopeFull, ScopeView, ScopeEdit, ScopeCreate, ScopeManage, ScopeApprove, ScopeEditAssigned:
			return Permission{Namespace: ns, Scope: scope}, true
		}
		return Permission{}, false
	}
	return Permission{}, false
}
