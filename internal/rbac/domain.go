package rbac

import "fmt"

// Permission represents an atomic capability the core can be asked to guard.
type Permission string

const (
	PermDashboardView Permission = "dashboard.view"
	PermFinanceView   Permission = "finance.view"
	PermFinanceEdit   Permission = "finance.edit"
	PermOrderView     Permission = "order.view"
	PermOrderCreate   Permission = "order.create"
	PermOrderUpdate   Permission = "order.update"
	PermPurchaseEdit  Permission = "purchase.edit"
)

var knownPermissions = map[Permission]struct{}{
	PermDashboardView: {},
	PermFinanceView:   {},
	PermFinanceEdit:   {},
	PermOrderView:     {},
	PermOrderCreate:   {},
	PermOrderUpdate:   {},
	PermPurchaseEdit:  {},
}

// Role groups permissions under a name resolved by the auth edge.
type Role struct {
	Name        string
	Permissions []Permission
}

// Checker answers capability questions for a role. The core calls through
// it and never owns the permission data itself.
type Checker struct {
	roles map[string]map[Permission]struct{}
}

// NewChecker validates every role against the known permission set at load
// time so that a typo fails startup instead of silently denying requests.
func NewChecker(roles []Role) (*Checker, error) {
	c := &Checker{roles: make(map[string]map[Permission]struct{}, len(roles))}
	for _, role := range roles {
		if role.Name == "" {
			return nil, fmt.Errorf("rbac: role with empty name")
		}
		grants := make(map[Permission]struct{}, len(role.Permissions))
		for _, perm := range role.Permissions {
			if _, ok := knownPermissions[perm]; !ok {
				return nil, fmt.Errorf("rbac: role %q grants unknown permission %q", role.Name, perm)
			}
			grants[perm] = struct{}{}
		}
		c.roles[role.Name] = grants
	}
	return c, nil
}

// Allowed reports whether the role holds the permission.
func (c *Checker) Allowed(role string, perm Permission) bool {
	grants, ok := c.roles[role]
	if !ok {
		return false
	}
	_, ok = grants[perm]
	return ok
}

// DefaultRoles mirrors the role layout the original deployment shipped with.
func DefaultRoles() []Role {
	all := []Permission{
		PermDashboardView, PermFinanceView, PermFinanceEdit,
		PermOrderView, PermOrderCreate, PermOrderUpdate, PermPurchaseEdit,
	}
	return []Role{
		{Name: "admin", Permissions: all},
		{Name: "finance", Permissions: []Permission{PermDashboardView, PermFinanceView, PermFinanceEdit, PermOrderView, PermPurchaseEdit}},
		{Name: "sales", Permissions: []Permission{PermDashboardView, PermOrderView, PermOrderCreate, PermOrderUpdate}},
		{Name: "viewer", Permissions: []Permission{PermDashboardView, PermFinanceView, PermOrderView}},
	}
}
