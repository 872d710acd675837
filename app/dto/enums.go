package dto

import "strconv"

type UserStatus int

const (
	UserStatusActive    UserStatus = 1
	UserStatusInactive  UserStatus = 2
	UserStatusInvited   UserStatus = 3
	UserStatusSuspended UserStatus = 4
)

// UserType is for categorization only (reports, onboarding, UI). It is
// never an input to access control, use roles and permissions for that.
type UserType int

const (
	UserTypeAdmin UserType = 1
	UserTypeUser  UserType = 2
)

const DefaultUserType = UserTypeUser

type Option struct {
	Label string
	Value string
}

var UserStatusOptions = []Option{
	{Label: "Active", Value: strconv.Itoa(int(UserStatusActive))},
	{Label: "Inactive", Value: strconv.Itoa(int(UserStatusInactive))},
	{Label: "Invited", Value: strconv.Itoa(int(UserStatusInvited))},
	{Label: "Suspended", Value: strconv.Itoa(int(UserStatusSuspended))},
}

var UserTypeOptions = []Option{
	{Label: "Admin Account", Value: strconv.Itoa(int(UserTypeAdmin))},
	{Label: "Regular User", Value: strconv.Itoa(int(UserTypeUser))},
}

var LogNameOptions = []Option{
	{Label: "User", Value: "user"},
	{Label: "Role", Value: "role"},
	{Label: "Authentication", Value: "auth"},
}

var EventOptions = []Option{
	{Label: "Created", Value: "created"},
	{Label: "Updated", Value: "updated"},
	{Label: "Deleted", Value: "deleted"},
}

func optionLabel(options []Option, value string) string {
	for _, opt := range options {
		if opt.Value == value {
			return opt.Label
		}
	}

	return "Unknown"
}

func (s UserStatus) Label() string {
	return optionLabel(UserStatusOptions, strconv.Itoa(int(s)))
}

func (s UserStatus) IsActive() bool {
	return s == UserStatusActive
}

func (t UserType) Label() string {
	return optionLabel(UserTypeOptions, strconv.Itoa(int(t)))
}
