package cmd

import (
	"adminctl/app/dto"
	"adminctl/app/service/query"
	"adminctl/app/service/user"
	"adminctl/app/ui/dialog"
	"adminctl/app/ui/gate"
	"adminctl/app/ui/views"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/elliotchance/pie/v2"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/samber/do"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

var userListOpts listOptions

var userForm struct {
	id          int64
	name        string
	email       string
	phone       string
	password    string
	bio         string
	dateOfBirth string
	userType    string
	status      string
	roles       []string
	permissions []string
	avatar      string
}

var Users = &cobra.Command{
	Use:   "users",
	Short: "Manage users",
}

var usersList = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: authed(func(cmd *cobra.Command, _ []string, a *app) error {
		if err := gate.Require(a.session, gate.Permission(dto.PermUsersView)); err != nil {
			return err
		}

		screen := newScreen(a, views.UserPage(a.session), user.Path)

		return showList(a.ctx, cmd.OutOrStdout(), screen, &userListOpts)
	}),
}

var usersShow = &cobra.Command{
	Use:   "show ID",
	Short: "Show one user",
	Args:  cobra.ExactArgs(1),
	RunE: authed(func(cmd *cobra.Command, args []string, a *app) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		usr, err := do.MustInvoke[*user.Service](a.di).Get(a.ctx, id)
		if err != nil {
			return err
		}

		return printUser(cmd.OutOrStdout(), usr, true)
	}),
}

var usersDelete = &cobra.Command{
	Use:   "delete ID...",
	Short: "Delete users",
	Args:  cobra.MinimumNArgs(1),
	RunE: authed(func(cmd *cobra.Command, args []string, a *app) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}

		svc := do.MustInvoke[*user.Service](a.di)
		flow := &views.DeleteFlow[dto.User]{
			Screen:   newScreen(a, views.UserPage(a.session), user.Path),
			Mutation: svc.DeleteMutation(),
			ID:       func(u *dto.User) int64 { return u.ID },
		}
		defer flow.Screen.Close()

		return deleteRows(a.ctx, cmd.OutOrStdout(), a, gate.Permission(dto.PermUsersDelete), flow, svc.Get, ids)
	}),
}

var usersSave = &cobra.Command{
	Use:   "save",
	Short: "Create a user, or update it with --id",
	RunE: authed(func(cmd *cobra.Command, _ []string, a *app) error {
		svc := do.MustInvoke[*user.Service](a.di)
		dialogs := dialog.NewStore[dto.User]()

		form := &dto.UserForm{
			UserType: dto.DefaultUserType,
			Status:   dto.UserStatusActive,
		}

		if userForm.id == 0 {
			if err := gate.Require(a.session, gate.Permission(dto.PermUsersCreate)); err != nil {
				return err
			}
			dialogs.Show(dialog.ModeAdd, nil)
		} else {
			if err := gate.Require(a.session, gate.Permission(dto.PermUsersEdit)); err != nil {
				return err
			}

			current, err := svc.Get(a.ctx, userForm.id)
			if err != nil {
				return err
			}
			dialogs.Show(dialog.ModeEdit, current)
			form = formFromUser(current)
		}

		if err := applyUserFlags(cmd, form); err != nil {
			return err
		}

		saved, err := svc.SaveMutation().Mutate(a.ctx, form, query.Callbacks[*dto.User]{
			OnSuccess: func(*dto.User) { dialogs.Close() },
		})
		if err != nil {
			return err
		}

		verb := "Created"
		if form.ID != 0 {
			verb = "Updated"
		}
		if saved != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s user #%d %s\n", verb, saved.ID, saved.Email)
		}

		return nil
	}),
}

func init() {
	userListOpts.bind(usersList, "status, user_type, role")

	flags := usersSave.Flags()
	flags.Int64Var(&userForm.id, "id", 0, "Id of the user to update")
	flags.StringVarP(&userForm.name, "name", "n", "", "Full name")
	flags.StringVarP(&userForm.email, "email", "e", "", "Email")
	flags.StringVar(&userForm.phone, "phone", "", "Phone number")
	flags.StringVarP(&userForm.password, "password", "p", "", "Password, required on create")
	flags.StringVar(&userForm.bio, "bio", "", "Short bio")
	flags.StringVar(&userForm.dateOfBirth, "date-of-birth", "", "Date of birth, YYYY-MM-DD")
	flags.StringVar(&userForm.userType, "type", "", "User type: admin or regular")
	flags.StringVar(&userForm.status, "status", "", "Status: active, inactive, invited or suspended")
	flags.StringArrayVarP(&userForm.roles, "role", "r", nil, "Role name, repeatable")
	flags.StringArrayVar(&userForm.permissions, "permission", nil, "Direct permission, repeatable")
	flags.StringVar(&userForm.avatar, "avatar", "", "Path of an avatar image")

	Users.AddCommand(usersList, usersShow, usersDelete, usersSave)
}

func formFromUser(u *dto.User) *dto.UserForm {
	return &dto.UserForm{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		Bio:         u.Bio,
		DateOfBirth: u.DateOfBirth,
		UserType:    u.UserType,
		Status:      u.Status,
		Address:     u.Address,
		City:        u.City,
		Country:     u.Country,
		PostalCode:  u.PostalCode,
		Gender:      u.Gender,
		Timezone:    u.Timezone,
		Language:    u.Language,
		Roles:       u.RoleNames(),
	}
}

func applyUserFlags(cmd *cobra.Command, form *dto.UserForm) error {
	flags := cmd.Flags()

	if flags.Changed("name") {
		form.Name = userForm.name
	}
	if flags.Changed("email") {
		form.Email = userForm.email
	}
	if flags.Changed("phone") {
		form.Phone = userForm.phone
	}
	if flags.Changed("password") {
		form.Password = userForm.password
	}
	if flags.Changed("bio") {
		form.Bio = userForm.bio
	}
	if flags.Changed("role") {
		form.Roles = userForm.roles
	}
	if flags.Changed("permission") {
		form.Permissions = userForm.permissions
	}
	if flags.Changed("avatar") {
		form.Avatar = userForm.avatar
	}

	if flags.Changed("date-of-birth") {
		parsed, err := time.Parse(openapi_types.DateFormat, userForm.dateOfBirth)
		if err != nil {
			return oops.
				Public("Date of birth must be YYYY-MM-DD").
				Errorf("invalid date of birth %q: %w", userForm.dateOfBirth, err)
		}
		form.DateOfBirth = &openapi_types.Date{Time: parsed}
	}

	if flags.Changed("type") {
		value, err := optionValue(dto.UserTypeOptions, userForm.userType)
		if err != nil {
			return err
		}
		form.UserType = dto.UserType(value)
	}

	if flags.Changed("status") {
		value, err := optionValue(dto.UserStatusOptions, userForm.status)
		if err != nil {
			return err
		}
		form.Status = dto.UserStatus(value)
	}

	return nil
}

// optionValue resolves a select option by value or by the first word of
// its label ("admin" for "Admin Account").
func optionValue(options []dto.Option, input string) (int, error) {
	input = strings.ToLower(strings.TrimSpace(input))

	idx := pie.FindFirstUsing(options, func(opt dto.Option) bool {
		first, _, _ := strings.Cut(strings.ToLower(opt.Label), " ")
		return opt.Value == input || first == input || strings.ToLower(opt.Label) == input
	})
	if idx < 0 {
		labels := pie.Map(options, func(opt dto.Option) string { return opt.Label })
		return 0, oops.
			Public(fmt.Sprintf("Unknown option '%s', use one of %s", input, strings.Join(labels, ", "))).
			Errorf("unknown option %q", input)
	}

	value, err := strconv.Atoi(options[idx].Value)
	if err != nil {
		return 0, oops.Errorf("non numeric option value %q: %w", options[idx].Value, err)
	}

	return value, nil
}
