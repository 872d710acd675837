package cmd

import (
	"adminctl/app/dto"
	"adminctl/app/service/permission"
	"adminctl/app/service/query"
	"adminctl/app/service/role"
	"adminctl/app/ui/dialog"
	"adminctl/app/ui/gate"
	"adminctl/app/ui/table"
	"adminctl/app/ui/views"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
	"github.com/spf13/cobra"
)

var (
	roleListOpts       listOptions
	permissionListOpts listOptions
	permissionsGrouped bool
)

var roleForm struct {
	id          int64
	name        string
	permissions []string
}

var Roles = &cobra.Command{
	Use:   "roles",
	Short: "Manage roles and their permissions",
}

var rolesList = &cobra.Command{
	Use:   "list",
	Short: "List roles",
	RunE: authed(func(cmd *cobra.Command, _ []string, a *app) error {
		if err := gate.Require(a.session, gate.Permission(dto.PermRolesView)); err != nil {
			return err
		}

		screen := newScreen(a, views.RolePage(a.session), role.Path)

		return showList(a.ctx, cmd.OutOrStdout(), screen, &roleListOpts)
	}),
}

var rolesShow = &cobra.Command{
	Use:   "show ID",
	Short: "Show a role with its permissions",
	Args:  cobra.ExactArgs(1),
	RunE: authed(func(cmd *cobra.Command, args []string, a *app) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		svc := do.MustInvoke[*role.Service](a.di)

		r, err := svc.Get(a.ctx, id)
		if err != nil {
			return err
		}

		permissions, err := svc.Permissions(a.ctx, id)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Role #%d %s\n\n", r.ID, r.Name)

		return printModules(cmd.OutOrStdout(), permission.GroupByModule(permissions))
	}),
}

var rolesDelete = &cobra.Command{
	Use:   "delete ID...",
	Short: "Delete roles",
	Args:  cobra.MinimumNArgs(1),
	RunE: authed(func(cmd *cobra.Command, args []string, a *app) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}

		svc := do.MustInvoke[*role.Service](a.di)
		flow := &views.DeleteFlow[dto.Role]{
			Screen:   newScreen(a, views.RolePage(a.session), role.Path),
			Mutation: svc.DeleteMutation(),
			ID:       func(r *dto.Role) int64 { return r.ID },
		}
		defer flow.Screen.Close()

		return deleteRows(a.ctx, cmd.OutOrStdout(), a, gate.Permission(dto.PermRolesDelete), flow, svc.Get, ids)
	}),
}

var rolesSave = &cobra.Command{
	Use:   "save",
	Short: "Create a role, or update it with --id",
	RunE: authed(func(cmd *cobra.Command, _ []string, a *app) error {
		svc := do.MustInvoke[*role.Service](a.di)
		dialogs := dialog.NewStore[dto.Role]()

		form := &dto.RoleForm{ID: roleForm.id}
		if form.ID == 0 {
			if err := gate.Require(a.session, gate.Permission(dto.PermRolesCreate)); err != nil {
				return err
			}
			dialogs.Show(dialog.ModeAdd, nil)
		} else {
			if err := gate.Require(a.session, gate.Permission(dto.PermRolesEdit)); err != nil {
				return err
			}

			current, err := svc.Get(a.ctx, form.ID)
			if err != nil {
				return err
			}
			dialogs.Show(dialog.ModeEdit, current)

			form.Name = current.Name
			form.Permissions = pie.Map(current.Permissions, func(p dto.Permission) string { return p.Name })
		}

		if cmd.Flags().Changed("name") {
			form.Name = roleForm.name
		}
		if cmd.Flags().Changed("permission") {
			form.Permissions = roleForm.permissions
		}

		saved, err := svc.SaveMutation().Mutate(a.ctx, form, query.Callbacks[*dto.Role]{
			OnSuccess: func(*dto.Role) { dialogs.Close() },
		})
		if err != nil {
			return err
		}

		if saved != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Saved role #%d %s\n", saved.ID, saved.Name)
		}

		return nil
	}),
}

var rolesModules = &cobra.Command{
	Use:   "module-permissions",
	Short: "List assignable permissions grouped by module",
	RunE: authed(func(cmd *cobra.Command, _ []string, a *app) error {
		modules, err := do.MustInvoke[*role.Service](a.di).ModulePermissions(a.ctx)
		if err != nil {
			return err
		}

		return printModules(cmd.OutOrStdout(), modules)
	}),
}

var rolesSetPermissions = &cobra.Command{
	Use:   "set-permissions ID PERMISSION...",
	Short: "Replace the permission set of a role",
	Args:  cobra.MinimumNArgs(2),
	RunE: authed(func(cmd *cobra.Command, args []string, a *app) error {
		if err := gate.Require(a.session, gate.Permission(dto.PermRolesEdit)); err != nil {
			return err
		}

		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		names := args[1:]
		if err := do.MustInvoke[*role.Service](a.di).SetPermissions(a.ctx, id, names); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Role #%d now has %d %s\n", id, len(names), plural(len(names), "permission", "permissions"))

		return nil
	}),
}

var Permissions = &cobra.Command{
	Use:   "permissions",
	Short: "List permissions",
	RunE: authed(func(cmd *cobra.Command, _ []string, a *app) error {
		if !permissionsGrouped {
			screen := newScreen(a, views.PermissionPage(a.session), permission.Path)

			return showList(a.ctx, cmd.OutOrStdout(), screen, &permissionListOpts)
		}

		params := dto.NewListParams()
		params.Limit = 1000
		params.Search = permissionListOpts.search

		list, err := do.MustInvoke[*permission.Service](a.di).List(a.ctx, params)
		if err != nil {
			return err
		}

		return printModules(cmd.OutOrStdout(), permission.GroupByModule(list.Items))
	}),
}

func init() {
	roleListOpts.bind(rolesList, "")

	rolesSave.Flags().Int64Var(&roleForm.id, "id", 0, "Id of the role to update")
	rolesSave.Flags().StringVarP(&roleForm.name, "name", "n", "", "Role name")
	rolesSave.Flags().StringArrayVar(&roleForm.permissions, "permission", nil, "Permission name, repeatable")

	Roles.AddCommand(rolesList, rolesShow, rolesDelete, rolesSave, rolesModules, rolesSetPermissions)

	permissionListOpts.bind(Permissions, "module")
	Permissions.Flags().BoolVarP(&permissionsGrouped, "by-module", "m", false, "Group by module instead of paging")
}

func printModules(out io.Writer, modules []dto.ModulePermissions) error {
	if len(modules) == 0 {
		fmt.Fprintln(out, "No permissions")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, module := range modules {
		title := module.Name
		if title == "" {
			title = module.Slug
		}
		fmt.Fprintf(w, "%s\t\n", table.Capitalize(title))

		for _, p := range module.Permissions {
			label := p.DisplayName
			if label == "" {
				label = p.Name
			}
			fmt.Fprintf(w, "  %s\t%s\n", p.Name, label)
		}
	}

	return w.Flush()
}
