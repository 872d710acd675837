package gate

import (
	"adminctl/app/dto"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	permissions map[string]bool
	roles       map[string]bool
}

func newChecker(permissions []string, roles ...string) *fakeChecker {
	c := &fakeChecker{permissions: map[string]bool{}, roles: map[string]bool{}}
	for _, p := range permissions {
		c.permissions[p] = true
	}
	for _, r := range roles {
		c.roles[r] = true
	}

	return c
}

func (c *fakeChecker) HasPermission(names ...string) bool {
	for _, name := range names {
		if c.permissions[name] {
			return true
		}
	}
	return false
}

func (c *fakeChecker) HasAllPermissions(names ...string) bool {
	for _, name := range names {
		if !c.permissions[name] {
			return false
		}
	}
	return true
}

func (c *fakeChecker) HasRole(names ...string) bool {
	for _, name := range names {
		if c.roles[name] {
			return true
		}
	}
	return false
}

func TestGate_Allows(t *testing.T) {
	checker := newChecker([]string{"users.view", "users.create"}, "Manager")

	tests := []struct {
		name string
		gate Gate
		want bool
	}{
		{"empty gate", Gate{}, true},
		{"any granted", Permission("users.create", "users.edit"), true},
		{"any denied", Permission("users.edit"), false},
		{"all granted", AllPermissions("users.view", "users.create"), true},
		{"all partially granted", AllPermissions("users.create", "users.edit"), false},
		{"role", Role("Admin", "Manager"), true},
		{"role missing", Role("Admin"), false},
		{"combined", Gate{Any: []string{"users.view"}, Roles: []string{"Admin"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.gate.Allows(checker))
		})
	}
}

func TestRequire(t *testing.T) {
	checker := newChecker([]string{"roles.view"})

	require.NoError(t, Require(checker, Permission("roles.view")))

	err := Require(checker, Permission("roles.delete"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestExportGate(t *testing.T) {
	assert.Equal(t, []string{"users.export"}, ExportGate("users").Any)
	assert.Equal(t, []string{"activity_logs.export"}, ExportGate("activity-logs").Any)
}

func TestFilterNav(t *testing.T) {
	titles := func(groups []NavGroup) []string {
		var result []string
		for _, group := range groups {
			for _, item := range group.Items {
				result = append(result, item.Title)
			}
		}
		return result
	}

	viewer := newChecker(nil)
	assert.Equal(t,
		[]string{"Dashboard", "Settings", "Login History", "Help Center"},
		titles(FilterNav(DefaultNavigation(), viewer)),
	)

	admin := newChecker([]string{dto.PermUsersView, dto.PermRolesView, dto.PermActivityLogsView})
	assert.Equal(t,
		[]string{"Dashboard", "Users", "Roles", "Settings", "Activity Logs", "Login History", "Help Center"},
		titles(FilterNav(DefaultNavigation(), admin)),
	)

	onlyGated := []NavGroup{{Title: "Admin", Items: []NavItem{
		{Title: "Tools", Items: []NavItem{{Title: "Purge", URL: "/purge", Gate: Permission("purge")}}},
	}}}
	assert.Empty(t, FilterNav(onlyGated, viewer))
}

func TestFilterActions(t *testing.T) {
	actions := []Action{
		{Name: "view", Label: "View"},
		{Name: "edit", Label: "Edit", Gate: Permission(dto.PermRolesEdit)},
		{Name: "delete", Label: "Delete", Gate: Permission(dto.PermRolesDelete)},
	}

	got := FilterActions(actions, newChecker([]string{dto.PermRolesDelete}))
	require.Len(t, got, 2)
	assert.Equal(t, "view", got[0].Name)
	assert.Equal(t, "delete", got[1].Name)
}
