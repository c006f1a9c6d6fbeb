package rbac

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCheckerRejectsUnknownPermission(t *testing.T) {
	_, err := NewChecker([]Role{
		{Name: "broken", Permissions: []Permission{"order.teleport"}},
	})
	require.Error(t, err)

	_, err = NewChecker([]Role{
		{Name: "", Permissions: []Permission{PermOrderView}},
	})
	require.Error(t, err)
}

func TestCheckerAllowed(t *testing.T) {
	checker, err := NewChecker(DefaultRoles())
	require.NoError(t, err)

	require.True(t, checker.Allowed("admin", PermFinanceEdit))
	require.True(t, checker.Allowed("sales", PermOrderCreate))
	require.False(t, checker.Allowed("sales", PermFinanceEdit))
	require.False(t, checker.Allowed("viewer", PermOrderUpdate))
	require.False(t, checker.Allowed("unknown-role", PermOrderView))
}
