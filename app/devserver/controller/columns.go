package controller

import "adminctl/app/dto"

var userColumns = []dto.ColumnConfig{
	{Key: "name", Label: "User", Show: true, Sortable: true},
	{Key: "roles", Label: "Role", Show: true},
	{Key: "phone", Label: "Contact", Show: true},
	{Key: "user_type", Label: "Type", Show: false},
	{Key: "created_at", Label: "Join Date", Show: true, Sortable: true},
	{Key: "status", Label: "Status", Show: true},
}

var roleColumns = []dto.ColumnConfig{
	{Key: "name", Label: "Role Name", Show: true, Sortable: true},
	{Key: "permissions", Label: "Permissions", Show: true},
	{Key: "created_at", Label: "Created", Show: false},
}

var activityLogColumns = []dto.ColumnConfig{
	{Key: "description", Label: "Description", Show: true},
	{Key: "log_name", Label: "Log Name", Show: true},
	{Key: "event", Label: "Event", Show: true},
	{Key: "subject_type", Label: "Subject", Show: true},
	{Key: "causer_type", Label: "Causer", Show: true},
	{Key: "batch_uuid", Label: "Batch", Show: false},
	{Key: "created_at", Label: "Date", Show: true, Sortable: true},
}

var loginHistoryColumns = []dto.ColumnConfig{
	{Key: "user_id", Label: "User", Show: true},
	{Key: "device", Label: "Device", Show: true},
	{Key: "ip_address", Label: "IP Address", Show: true},
	{Key: "platform", Label: "Platform", Show: true},
	{Key: "user_agent", Label: "User Agent", Show: false},
	{Key: "login_at", Label: "Login Time", Show: true, Sortable: true},
	{Key: "status", Label: "Status", Show: true},
}
