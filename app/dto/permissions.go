package dto

// Permission names granted by the backend. They are opaque membership
// tokens; the client never derives one from another.
const (
	PermUsersView   = "users.view"
	PermUsersCreate = "users.create"
	PermUsersEdit   = "users.edit"
	PermUsersDelete = "users.delete"
	PermUsersExport = "users.export"

	PermRolesView   = "roles.view"
	PermRolesCreate = "roles.create"
	PermRolesEdit   = "roles.edit"
	PermRolesDelete = "roles.delete"
	PermRolesExport = "roles.export"

	PermPermissionsView = "permissions.view"

	PermActivityLogsView   = "activity_logs.view"
	PermActivityLogsDelete = "activity_logs.delete"
	PermActivityLogsExport = "activity_logs.export"

	PermLoginHistoryView   = "login_history.view"
	PermLoginHistoryExport = "login_history.export"
)

const RoleSuperAdmin = "Super Admin"

var AllPermissions = []string{
	PermUsersView, PermUsersCreate, PermUsersEdit, PermUsersDelete, PermUsersExport,
	PermRolesView, PermRolesCreate, PermRolesEdit, PermRolesDelete, PermRolesExport,
	PermPermissionsView,
	PermActivityLogsView, PermActivityLogsDelete, PermActivityLogsExport,
	PermLoginHistoryView, PermLoginHistoryExport,
}
