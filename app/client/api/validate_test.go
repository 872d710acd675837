package api

import (
	"adminctl/app/dto"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_UserForm(t *testing.T) {
	err := Validate(&dto.UserForm{
		Name:     "A",
		Email:    "not-an-email",
		Phone:    "123",
		Password: "short",
		UserType: dto.UserTypeUser,
		Status:   dto.UserStatusActive,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAPI))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusCode(err))

	fields := FieldErrors(err)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "phone")
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "roles")
}

func TestValidate_OptionalPassword(t *testing.T) {
	err := Validate(&dto.UserForm{
		Name:     "Alice",
		Email:    "alice@example.com",
		Phone:    "0123456789",
		UserType: dto.UserTypeUser,
		Status:   dto.UserStatusActive,
		Roles:    []string{"Editor"},
	})
	assert.NoError(t, err)
}

func TestValidate_RoleForm(t *testing.T) {
	err := Validate(&dto.RoleForm{Name: "E"})
	require.Error(t, err)
	assert.Equal(t, []string{"name must be at least 2 characters"}, FieldErrors(err)["name"])
	assert.Equal(t, []string{"permissions is required"}, FieldErrors(err)["permissions"])

	assert.NoError(t, Validate(&dto.RoleForm{Name: "Editor", Permissions: []string{"users.view"}}))
}
