package views

import (
	"adminctl/app/dto"
	"adminctl/app/ui/table"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type grants map[string]bool

func (g grants) HasPermission(names ...string) bool {
	for _, name := range names {
		if g[name] {
			return true
		}
	}
	return false
}

func (g grants) HasAllPermissions(names ...string) bool {
	for _, name := range names {
		if !g[name] {
			return false
		}
	}
	return true
}

func (g grants) HasRole(...string) bool { return false }

func renderColumns[T any](columns []table.Column[T], row *T) map[string]string {
	result := make(map[string]string, len(columns))
	for _, column := range columns {
		result[column.Key] = column.Render(row)
	}

	return result
}

func TestActivityLogRegistry(t *testing.T) {
	registry := ActivityLogRegistry(grants{})

	columns := registry.Generate([]dto.ColumnConfig{
		{Key: "description", Label: "Description", Show: true},
		{Key: "event", Label: "Event", Show: true},
		{Key: "x", Label: "X", Show: false},
		{Key: "subject_type", Label: "Subject", Show: true},
		{Key: "causer_type", Label: "Causer", Show: true},
		{Key: "batch_uuid", Label: "Batch", Show: true},
	})

	keys := make([]string, 0, len(columns))
	for _, column := range columns {
		keys = append(keys, column.Key)
	}
	assert.Equal(t, []string{"description", "event", "subject_type", "causer_type", "batch_uuid", "actions"}, keys)

	withCauser := renderColumns(columns, &dto.ActivityLog{
		Description: "Updated role",
		Event:       "updated",
		Subject:     &dto.Subject{Type: "Role", Name: "Editor"},
		Causer:      &dto.Causer{Name: "Admin", Email: "admin@example.com"},
	})
	assert.Equal(t, "Updated role by Admin", withCauser["description"])
	assert.Equal(t, "Updated", withCauser["event"])
	assert.Equal(t, "Role: Editor", withCauser["subject_type"])
	assert.Equal(t, "Admin (admin@example.com)", withCauser["causer_type"])
	assert.Equal(t, table.Placeholder, withCauser["batch_uuid"])
	assert.Equal(t, "View", withCauser["actions"])

	system := renderColumns(columns, &dto.ActivityLog{Description: "Nightly cleanup"})
	assert.Equal(t, "System", system["causer_type"])
	assert.Equal(t, table.Placeholder, system["subject_type"])
}

func TestActivityLogActionsGated(t *testing.T) {
	columns := ActivityLogRegistry(grants{dto.PermActivityLogsDelete: true}).Generate(nil)

	actions := columns[len(columns)-1]
	assert.Equal(t, "View | Delete", actions.Render(&dto.ActivityLog{}))
}

func TestRoleRegistry(t *testing.T) {
	columns := RoleRegistry(grants{}).Generate(nil)
	require.Len(t, columns, 3)
	assert.Equal(t, "Role Name", columns[0].Header)

	render := columns[1].Render
	assert.Equal(t, "No permissions", render(&dto.Role{}))
	assert.Equal(t, "1 permission", render(&dto.Role{Permissions: []dto.Permission{{Name: "a"}}}))
	assert.Equal(t, "2 permissions", render(&dto.Role{Permissions: []dto.Permission{{Name: "a"}, {Name: "b"}}}))
	assert.Equal(t, table.Placeholder, columns[2].Render(&dto.Role{}))
}

func TestUserRegistry(t *testing.T) {
	columns := UserRegistry(grants{dto.PermUsersEdit: true}).Generate(nil)

	values := renderColumns(columns, &dto.User{
		Name:      "Jane",
		Email:     "jane@example.com",
		Roles:     []dto.Role{{Name: "Editor"}, {Name: "Viewer"}},
		CreatedAt: "2024-03-05T10:00:00Z",
		Status:    dto.UserStatusSuspended,
	})

	assert.Equal(t, "Jane <jane@example.com>", values["name"])
	assert.Equal(t, "Editor, Viewer", values["roles"])
	assert.Equal(t, table.Placeholder, values["phone"])
	assert.Equal(t, "Mar 05, 2024", values["created_at"])
	assert.Equal(t, "Suspended", values["status"])
	assert.Equal(t, "Edit", values["actions"])
}

func TestLoginHistoryRegistry(t *testing.T) {
	columns := LoginHistoryRegistry().Generate(nil)

	for _, column := range columns {
		assert.NotEqual(t, "actions", column.Key)
	}

	values := renderColumns(columns, &dto.LoginHistory{
		IPAddress: "10.0.0.1",
		Device:    "Desktop",
		Browser:   "Firefox",
		LoginAt:   "2024-03-05 10:04:00",
		Status:    dto.LoginStatusFailed,
	})

	assert.Equal(t, "Unknown User", values["user_id"])
	assert.Equal(t, "Desktop / Firefox", values["device"])
	assert.Equal(t, "10.0.0.1", values["ip_address"])
	assert.Equal(t, "Mar 05, 2024 10:04", values["login_at"])
	assert.Equal(t, "Failed", values["status"])
}

func TestUserPage_EmptyState(t *testing.T) {
	var buf bytes.Buffer

	err := UserPage(grants{}).Render(&buf, table.State[dto.User]{
		List:   &dto.ListResponse[dto.User]{Total: 0},
		Params: dto.NewListParams(),
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "User List")
	assert.Contains(t, out, "No data found")
	assert.NotContains(t, out, "Add User")
}
