package mapper

import (
	"adminctl/app/devserver/store"
	"adminctl/app/dto"
	"time"

	"github.com/elliotchance/pie/v2"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

const timestampLayout = time.RFC3339

// MapUser renders u with its flattened grants. Roles carry names only.
func MapUser(u store.User, granted []string, catalogue []dto.Permission) dto.User {
	result := dto.User{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		Bio:         u.Bio,
		UserType:    u.UserType,
		Status:      u.Status,
		AvatarURL:   u.AvatarURL,
		Address:     u.Address,
		City:        u.City,
		Country:     u.Country,
		PostalCode:  u.PostalCode,
		Gender:      u.Gender,
		Timezone:    u.Timezone,
		Language:    u.Language,
		IsVerified:  u.IsVerified,
		Roles:       pie.Map(u.Roles, func(name string) dto.Role { return dto.Role{Name: name} }),
		Permissions: MapPermissionNames(granted, catalogue),
		CreatedAt:   u.CreatedAt.Format(timestampLayout),
		UpdatedAt:   u.UpdatedAt.Format(timestampLayout),
	}

	if u.LastLoginAt != nil {
		result.LastLoginAt = u.LastLoginAt.Format(timestampLayout)
	}

	if u.DateOfBirth != "" {
		if t, err := time.Parse(openapi_types.DateFormat, u.DateOfBirth); err == nil {
			result.DateOfBirth = &openapi_types.Date{Time: t}
		}
	}

	return result
}

func MapRole(r store.Role, catalogue []dto.Permission) dto.Role {
	return dto.Role{
		ID:          r.ID,
		Name:        r.Name,
		Permissions: MapPermissionNames(r.Permissions, catalogue),
		CreatedAt:   r.CreatedAt.Format(timestampLayout),
		UpdatedAt:   r.UpdatedAt.Format(timestampLayout),
	}
}

// MapPermissionNames resolves names against the catalogue; unknown names
// are kept with only the name set.
func MapPermissionNames(names []string, catalogue []dto.Permission) []dto.Permission {
	return pie.Map(names, func(name string) dto.Permission {
		idx := pie.FindFirstUsing(catalogue, func(p dto.Permission) bool {
			return p.Name == name
		})
		if idx < 0 {
			return dto.Permission{Name: name}
		}

		return catalogue[idx]
	})
}
