package dto

import (
	openapi_types "github.com/oapi-codegen/runtime/types"
)

type Permission struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
	Description string `json:"description,omitempty"`
	Module      string `json:"module,omitempty"`
	Slug        string `json:"slug,omitempty"`
}

type Role struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	DisplayName string       `json:"display_name,omitempty"`
	Permissions []Permission `json:"permissions,omitempty"`
	CreatedAt   string       `json:"created_at,omitempty"`
	UpdatedAt   string       `json:"updated_at,omitempty"`
}

// User is the account record; Permissions is the union of direct and
// role-derived grants, flattened by the backend.
type User struct {
	ID          int64               `json:"id"`
	Name        string              `json:"name"`
	Email       string              `json:"email"`
	Phone       string              `json:"phone,omitempty"`
	Bio         string              `json:"bio,omitempty"`
	DateOfBirth *openapi_types.Date `json:"date_of_birth,omitempty"`
	UserType    UserType            `json:"user_type"`
	Status      UserStatus          `json:"status"`
	AvatarURL   string              `json:"avatar_url,omitempty"`
	Address     string              `json:"address,omitempty"`
	City        string              `json:"city,omitempty"`
	Country     string              `json:"country,omitempty"`
	PostalCode  string              `json:"postal_code,omitempty"`
	Gender      string              `json:"gender,omitempty"`
	LastLoginAt string              `json:"last_login_at,omitempty"`
	Timezone    string              `json:"timezone,omitempty"`
	Language    string              `json:"language,omitempty"`
	IsVerified  bool                `json:"is_verified,omitempty"`
	Roles       []Role              `json:"roles"`
	Permissions []Permission        `json:"permissions"`
	CreatedAt   string              `json:"created_at,omitempty"`
	UpdatedAt   string              `json:"updated_at,omitempty"`
}

func (u *User) PermissionNames() []string {
	names := make([]string, 0, len(u.Permissions))
	for _, p := range u.Permissions {
		names = append(names, p.Name)
	}

	return names
}

func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}

	return names
}

// UserForm is the create/update payload of users. ID is zero on create.
type UserForm struct {
	ID          int64               `json:"id,omitempty"`
	Name        string              `json:"name" validate:"required,min=2"`
	Email       string              `json:"email" validate:"required,email"`
	Phone       string              `json:"phone" validate:"required,min=10"`
	Password    string              `json:"password,omitempty" validate:"omitempty,min=8"`
	Bio         string              `json:"bio,omitempty"`
	DateOfBirth *openapi_types.Date `json:"date_of_birth,omitempty"`
	UserType    UserType            `json:"user_type" validate:"oneof=1 2"`
	Status      UserStatus          `json:"status" validate:"oneof=1 2 3 4"`
	Address     string              `json:"address,omitempty"`
	City        string              `json:"city,omitempty"`
	Country     string              `json:"country,omitempty"`
	PostalCode  string              `json:"postal_code,omitempty"`
	Gender      string              `json:"gender,omitempty"`
	Timezone    string              `json:"timezone,omitempty"`
	Language    string              `json:"language,omitempty"`
	Roles       []string            `json:"roles" validate:"required,min=1"`
	// Direct permissions only
	Permissions []string `json:"permissions,omitempty"`
	// Local path of an avatar image, sent as a multipart file
	Avatar string `json:"-"`
}

type RoleForm struct {
	ID          int64    `json:"id,omitempty"`
	Name        string   `json:"name" validate:"required,min=2"`
	Permissions []string `json:"permissions" validate:"required,min=1"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type RegisterRequest struct {
	Name                 string `json:"name" validate:"required,min=2"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email                string `json:"email" validate:"required,email"`
	Token                string `json:"token" validate:"required"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

type ChangePasswordRequest struct {
	CurrentPassword      string `json:"current_password" validate:"required"`
	Password             string `json:"password" validate:"required,min=8,nefield=CurrentPassword"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required"`
}

type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ProfileForm struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone,omitempty"`
	Bio      string `json:"bio,omitempty"`
	Timezone string `json:"timezone,omitempty"`
	Language string `json:"language,omitempty"`
}
