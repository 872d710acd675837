package views

import (
	"adminctl/app/dto"
	"adminctl/app/ui/gate"
	"adminctl/app/ui/table"
	"fmt"
)

var RoleActions = []gate.Action{
	{Name: "edit", Label: "Edit", Gate: gate.Permission(dto.PermRolesEdit)},
	{Name: "delete", Label: "Delete", Gate: gate.Permission(dto.PermRolesDelete)},
}

func RoleRegistry(checker gate.Checker) *table.Registry[dto.Role] {
	return table.NewRegistry[dto.Role]().
		Register("permissions", func(r *dto.Role) string {
			switch n := len(r.Permissions); n {
			case 0:
				return "No permissions"
			case 1:
				return "1 permission"
			default:
				return fmt.Sprintf("%d permissions", n)
			}
		}).
		WithDefaults(
			table.Column[dto.Role]{Key: "name", Header: "Role Name", Sortable: true},
			table.Column[dto.Role]{Key: "permissions", Header: "Permissions"},
		).
		WithActions(actionsColumn[dto.Role](RoleActions, checker))
}

func RolePage(checker gate.Checker) *table.Page[dto.Role] {
	return &table.Page[dto.Role]{
		Title:       "Roles",
		Description: "Manage roles and their permissions.",
		CreateLabel: "Add Role",
		CreateGate:  gate.Permission(dto.PermRolesCreate),
		Checker:     checker,
		Registry:    RoleRegistry(checker),
	}
}
