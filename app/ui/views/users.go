package views

import (
	"adminctl/app/dto"
	"adminctl/app/ui/gate"
	"adminctl/app/ui/table"
	"strings"
)

var UserActions = []gate.Action{
	{Name: "edit", Label: "Edit", Gate: gate.Permission(dto.PermUsersEdit)},
	{Name: "delete", Label: "Delete", Gate: gate.Permission(dto.PermUsersDelete)},
}

func UserRegistry(checker gate.Checker) *table.Registry[dto.User] {
	return table.NewRegistry[dto.User]().
		Register("name", func(u *dto.User) string {
			if u.Email == "" {
				return orPlaceholder(u.Name)
			}
			return u.Name + " <" + u.Email + ">"
		}).
		Register("roles", func(u *dto.User) string {
			return orPlaceholder(strings.Join(u.RoleNames(), ", "))
		}).
		Register("phone", func(u *dto.User) string {
			return orPlaceholder(u.Phone)
		}).
		Register("created_at", func(u *dto.User) string {
			return formatTimestamp(u.CreatedAt, dateLayout)
		}).
		Register("status", func(u *dto.User) string {
			return u.Status.Label()
		}).
		Register("user_type", func(u *dto.User) string {
			return u.UserType.Label()
		}).
		WithDefaults(
			table.Column[dto.User]{Key: "name", Header: "User", Sortable: true},
			table.Column[dto.User]{Key: "roles", Header: "Role"},
			table.Column[dto.User]{Key: "phone", Header: "Contact"},
			table.Column[dto.User]{Key: "created_at", Header: "Join Date", Sortable: true},
			table.Column[dto.User]{Key: "status", Header: "Status"},
		).
		WithActions(actionsColumn[dto.User](UserActions, checker))
}

func UserPage(checker gate.Checker) *table.Page[dto.User] {
	return &table.Page[dto.User]{
		Title:       "User List",
		Description: "Manage your users and their roles here.",
		CreateLabel: "Add User",
		CreateGate:  gate.Permission(dto.PermUsersCreate),
		Checker:     checker,
		Registry:    UserRegistry(checker),
	}
}
