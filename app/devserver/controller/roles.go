package controller

import (
	"adminctl/app/devserver/mapper"
	"adminctl/app/devserver/middleware"
	"adminctl/app/devserver/store"
	"adminctl/app/dto"
	"fmt"
	"net/http"
	"strconv"

	"github.com/elliotchance/pie/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/oops"
)

func (s *Server) mapRoles(roles []store.Role) []dto.Role {
	catalogue := s.store.Permissions()

	return pie.Map(roles, func(r store.Role) dto.Role {
		return mapper.MapRole(r, catalogue)
	})
}

func (s *Server) ListRoles(c *fiber.Ctx) error {
	search := c.Query("search")

	roles := pie.Filter(s.store.Roles(), func(r store.Role) bool {
		return search == "" || containsFold(r.Name, search)
	})

	return respondList(c, "Roles retrieved", s.mapRoles(roles), roleColumns)
}

func (s *Server) AllRoles(c *fiber.Ctx) error {
	return respond(c, http.StatusOK, "ok", s.mapRoles(s.store.Roles()))
}

func (s *Server) GetRole(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	role, err := s.store.Role(id)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "ok", mapper.MapRole(role, s.store.Permissions()))
}

// ModulePermissions lists the permission catalogue grouped by module in
// catalogue order.
func (s *Server) ModulePermissions(c *fiber.Ctx) error {
	var modules []dto.ModulePermissions
	index := map[string]int{}

	for _, permission := range s.store.Permissions() {
		i, ok := index[permission.Module]
		if !ok {
			i = len(modules)
			index[permission.Module] = i
			modules = append(modules, dto.ModulePermissions{
				Name: permission.Module,
				Slug: permission.Module,
			})
		}

		modules[i].Permissions = append(modules[i].Permissions, permission)
	}

	return respond(c, http.StatusOK, "ok", dto.ModulePermissionsResponse{ModulePermissions: modules})
}

func (s *Server) RolePermissions(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	role, err := s.store.Role(id)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "ok", mapper.MapPermissionNames(role.Permissions, s.store.Permissions()))
}

type permissionsRequest struct {
	Permissions []string `json:"permissions" validate:"required,min=1"`
}

func (s *Server) SetRolePermissions(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req permissionsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	role, err := s.store.SetRolePermissions(id, req.Permissions)
	if err != nil {
		return err
	}

	s.logRole(c, role, "updated")

	return respond(c, http.StatusOK, "Permissions updated", mapper.MapRole(role, s.store.Permissions()))
}

func (s *Server) SaveRole(c *fiber.Ctx) error {
	form := &dto.RoleForm{}

	if isMultipart(c) {
		values, _, err := formValues(c)
		if err != nil {
			return err
		}

		form.ID, _ = strconv.ParseInt(values.Get("id"), 10, 64)
		form.Name = values.Get("name")
		form.Permissions = values["permissions[]"]
		if err := bindValidate(form); err != nil {
			return err
		}
	} else if err := bind(c, form); err != nil {
		return err
	}

	needed := dto.PermRolesCreate
	event := "created"
	if form.ID != 0 {
		needed = dto.PermRolesEdit
		event = "updated"
	}
	if err := s.require(c, needed); err != nil {
		return err
	}

	role, err := s.store.SaveRole(store.Role{
		ID:          form.ID,
		Name:        form.Name,
		Permissions: pie.Unique(form.Permissions),
	})
	if err != nil {
		return err
	}

	s.logRole(c, role, event)

	statusCode := http.StatusOK
	if event == "created" {
		statusCode = http.StatusCreated
	}

	return respond(c, statusCode, "Role "+event, mapper.MapRole(role, s.store.Permissions()))
}

func (s *Server) DeleteRoles(c *fiber.Ctx) error {
	ids, err := pathIDs(c)
	if err != nil {
		return err
	}

	deleted, err := s.store.DeleteRoles(ids)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return oops.
			With("status_code", http.StatusNotFound).
			Public("Role not found").
			Errorf("no roles among %v", ids)
	}

	causer, _ := middleware.CurrentUser(c)
	s.store.AddActivity(store.Activity{
		LogName:     "role",
		Event:       "deleted",
		Description: fmt.Sprintf("Deleted %d role(s)", deleted),
		Causer:      &causer,
	})

	return respond(c, http.StatusOK, "Roles deleted", fiber.Map{"deleted": deleted})
}

func (s *Server) logRole(c *fiber.Ctx, role store.Role, event string) {
	causer, _ := middleware.CurrentUser(c)

	s.store.AddActivity(store.Activity{
		LogName:     "role",
		Event:       event,
		Description: fmt.Sprintf("Role %s %s", role.Name, event),
		Causer:      &causer,
		SubjectType: "Role",
		SubjectID:   role.ID,
		SubjectName: role.Name,
	})
}

func (s *Server) ListPermissions(c *fiber.Ctx) error {
	search := c.Query("search")
	module := c.Query("module")

	permissions := pie.Filter(s.store.Permissions(), func(p dto.Permission) bool {
		if module != "" && p.Module != module {
			return false
		}

		return search == "" || containsFold(p.Name, search) || containsFold(p.DisplayName, search)
	})

	return respondList(c, "Permissions retrieved", permissions, nil)
}
