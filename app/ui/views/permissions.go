package views

import (
	"adminctl/app/dto"
	"adminctl/app/ui/gate"
	"adminctl/app/ui/table"
)

func PermissionRegistry() *table.Registry[dto.Permission] {
	return table.NewRegistry[dto.Permission]().
		Register("module", func(p *dto.Permission) string {
			return orPlaceholder(table.Capitalize(p.Module))
		}).
		WithDefaults(
			table.Column[dto.Permission]{Key: "name", Header: "Name", Sortable: true},
			table.Column[dto.Permission]{Key: "display_name", Header: "Display Name"},
			table.Column[dto.Permission]{Key: "module", Header: "Module"},
			table.Column[dto.Permission]{Key: "description", Header: "Description"},
		)
}

func PermissionPage(checker gate.Checker) *table.Page[dto.Permission] {
	return &table.Page[dto.Permission]{
		Title:       "Permissions",
		Description: "Permissions available for roles and users.",
		Checker:     checker,
		Registry:    PermissionRegistry(),
	}
}
