package controller

import (
	"adminctl/app/client/api"
	"adminctl/app/devserver/middleware"
	"adminctl/app/devserver/store"
	"adminctl/app/dto"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/elliotchance/pie/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/rofleksey/meg"
	"github.com/samber/oops"
)

func (s *Server) filterUsers(c *fiber.Ctx) []store.User {
	search := c.Query("search")
	status := c.Query("status")
	userType := c.Query("user_type")
	role := c.Query("role")

	return pie.Filter(s.store.Users(), func(u store.User) bool {
		if search != "" && !containsFold(u.Name, search) && !containsFold(u.Email, search) && !containsFold(u.Phone, search) {
			return false
		}
		if status != "" && strconv.Itoa(int(u.Status)) != status {
			return false
		}
		if userType != "" && strconv.Itoa(int(u.UserType)) != userType {
			return false
		}
		if role != "" && !pie.Contains(u.Roles, role) {
			return false
		}

		return true
	})
}

func (s *Server) ListUsers(c *fiber.Ctx) error {
	users := s.filterUsers(c)

	mapped := make([]dto.User, 0, len(users))
	for _, u := range users {
		m, err := s.mapUser(u)
		if err != nil {
			return err
		}
		mapped = append(mapped, m)
	}

	return respondList(c, "Users retrieved", mapped, userColumns)
}

func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	usr, err := s.store.User(id)
	if err != nil {
		return err
	}

	mapped, err := s.mapUser(usr)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "ok", mapped)
}

// SaveUser creates a user, or updates it when the form carries an id.
// Multipart and JSON bodies are accepted.
func (s *Server) SaveUser(c *fiber.Ctx) error {
	form, avatar, err := bindUserForm(c)
	if err != nil {
		return err
	}

	needed := dto.PermUsersCreate
	if form.ID != 0 {
		needed = dto.PermUsersEdit
	}
	if err := s.require(c, needed); err != nil {
		return err
	}

	if err := api.Validate(form); err != nil {
		return err
	}

	usr := store.User{}
	event := "created"
	if form.ID != 0 {
		usr, err = s.store.User(form.ID)
		if err != nil {
			return err
		}
		event = "updated"
	} else if form.Password == "" {
		return fieldError("password", "password is required")
	}

	usr.Name = form.Name
	usr.Email = form.Email
	usr.Phone = form.Phone
	usr.Bio = form.Bio
	usr.UserType = form.UserType
	usr.Status = form.Status
	usr.Address = form.Address
	usr.City = form.City
	usr.Country = form.Country
	usr.PostalCode = form.PostalCode
	usr.Gender = form.Gender
	usr.Timezone = form.Timezone
	usr.Language = form.Language
	usr.Roles = form.Roles
	usr.Permissions = form.Permissions
	if form.DateOfBirth != nil {
		usr.DateOfBirth = form.DateOfBirth.Format(openapi_types.DateFormat)
	}
	if avatar != "" {
		usr.AvatarURL = "/storage/avatars/" + uuid.NewString() + filepath.Ext(avatar)
	}

	if form.Password != "" {
		hash, err := meg.HashPassword(form.Password)
		if err != nil {
			return oops.Errorf("HashPassword: %w", err)
		}
		usr.PasswordHash = hash
	}

	saved, err := s.store.SaveUser(usr)
	if err != nil {
		return err
	}

	causer, _ := middleware.CurrentUser(c)
	s.store.AddActivity(store.Activity{
		LogName:     "user",
		Event:       event,
		Description: fmt.Sprintf("User %s %s", saved.Name, event),
		Causer:      &causer,
		SubjectType: "User",
		SubjectID:   saved.ID,
		SubjectName: saved.Name,
	})

	mapped, err := s.mapUser(saved)
	if err != nil {
		return err
	}

	statusCode := http.StatusOK
	if event == "created" {
		statusCode = http.StatusCreated
	}

	return respond(c, statusCode, "User "+event, mapped)
}

func (s *Server) DeleteUsers(c *fiber.Ctx) error {
	ids, err := pathIDs(c)
	if err != nil {
		return err
	}

	causer, _ := middleware.CurrentUser(c)
	if pie.Contains(ids, causer.ID) {
		return oops.
			With("status_code", http.StatusForbidden).
			Public("You cannot delete your own account").
			Errorf("user %d tried to delete itself", causer.ID)
	}

	deleted := s.store.DeleteUsers(ids)
	if deleted == 0 {
		return oops.
			With("status_code", http.StatusNotFound).
			Public("User not found").
			Errorf("no users among %v", ids)
	}

	s.store.AddActivity(store.Activity{
		LogName:     "user",
		Event:       "deleted",
		Description: fmt.Sprintf("Deleted %d user(s)", deleted),
		Causer:      &causer,
	})

	return respond(c, http.StatusOK, "Users deleted", fiber.Map{"deleted": deleted})
}

func (s *Server) require(c *fiber.Ctx, permission string) error {
	checker, err := middleware.Checker(c, s.store)
	if err != nil {
		return err
	}

	if !checker.HasPermission(permission) {
		return oops.
			With("status_code", http.StatusForbidden).
			Public(api.MsgForbidden).
			Errorf("missing permission %s", permission)
	}

	return nil
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm)
}

// formValues returns the fields of a multipart body and the name of the
// uploaded avatar, if any.
func formValues(c *fiber.Ctx) (url.Values, string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, "", oops.
			With("status_code", http.StatusBadRequest).
			Public("Malformed request body").
			Errorf("MultipartForm: %w", err)
	}

	var avatar string
	if files := form.File["avatar"]; len(files) > 0 {
		avatar = files[0].Filename
	}

	return url.Values(form.Value), avatar, nil
}

func bindUserForm(c *fiber.Ctx) (*dto.UserForm, string, error) {
	form := &dto.UserForm{}

	if !isMultipart(c) {
		if err := c.BodyParser(form); err != nil {
			return nil, "", oops.
				With("status_code", http.StatusBadRequest).
				Public("Malformed request body").
				Errorf("BodyParser: %w", err)
		}

		return form, "", nil
	}

	values, avatar, err := formValues(c)
	if err != nil {
		return nil, "", err
	}

	form.ID, _ = strconv.ParseInt(values.Get("id"), 10, 64)
	form.Name = values.Get("name")
	form.Email = values.Get("email")
	form.Phone = values.Get("phone")
	form.Password = values.Get("password")
	form.Bio = values.Get("bio")
	form.Address = values.Get("address")
	form.City = values.Get("city")
	form.Country = values.Get("country")
	form.PostalCode = values.Get("postal_code")
	form.Gender = values.Get("gender")
	form.Timezone = values.Get("timezone")
	form.Language = values.Get("language")
	form.Roles = values["roles[]"]
	form.Permissions = values["permissions[]"]

	userType, _ := strconv.Atoi(values.Get("user_type"))
	form.UserType = dto.UserType(userType)
	status, _ := strconv.Atoi(values.Get("status"))
	form.Status = dto.UserStatus(status)

	if dob := values.Get("date_of_birth"); dob != "" {
		date, err := parseDate(dob)
		if err != nil {
			return nil, "", fieldError("date_of_birth", "The date of birth is not a valid date.")
		}
		form.DateOfBirth = date
	}

	return form, avatar, nil
}
