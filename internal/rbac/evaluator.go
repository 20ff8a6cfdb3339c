package rbac

// HasPermission reports whether any role in the set satisfies the requested
// permission. A role satisfies a permission when it holds the exact
// permission, or when it holds the "full" scope of the permission's
// namespace. Unknown roles contribute nothing; an empty role set denies
// everything. Pure function over the static grant table.
func HasPermission(roles []Role, perm Permission) bool {
	for _, role := range roles {
		set, ok := grants[role]
		if !ok {
			continue
		}
		if _, ok := set[perm]; ok {
			return true
		}
		if _, ok := set[Permission{Namespace: perm.Namespace, Scope: ScopeFull}]; ok {
			return true
		}
	}
	return false
}

// HasAnyPermission reports whether the role set satisfies at least one of the
// listed permissions. An empty list is vacuously satisfied.
func HasAnyPermission(roles []Role, perms ...Permission) bool {
	if len(perms) == 0 {
		return true
	}
	for _, p := range perms {
		if HasPermission(roles, p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether the role set satisfies every listed
// permission.
func HasAllPermissions(roles []Role, perms ...Permission) bool {
	for _, p := range perms {
		if !HasPermission(roles, p) {
			return false
		}
	}
	return true
}
