package views

import (
	"adminctl/app/dto"
	"adminctl/app/ui/gate"
	"adminctl/app/ui/table"
)

var ActivityLogActions = []gate.Action{
	{Name: "view", Label: "View"},
	{Name: "delete", Label: "Delete", Gate: gate.Permission(dto.PermActivityLogsDelete)},
}

func ActivityLogRegistry(checker gate.Checker) *table.Registry[dto.ActivityLog] {
	return table.NewRegistry[dto.ActivityLog]().
		Register("description", func(l *dto.ActivityLog) string {
			if l.Causer == nil {
				return orPlaceholder(l.Description)
			}
			return l.Description + " by " + l.Causer.Name
		}).
		Register("log_name", func(l *dto.ActivityLog) string {
			return orPlaceholder(table.Capitalize(l.LogName))
		}).
		Register("event", func(l *dto.ActivityLog) string {
			return orPlaceholder(table.Capitalize(l.Event))
		}).
		Register("subject_type", func(l *dto.ActivityLog) string {
			if l.Subject == nil {
				return table.Placeholder
			}
			return l.Subject.Type + ": " + l.Subject.Name
		}).
		Register("causer_type", func(l *dto.ActivityLog) string {
			if l.Causer == nil {
				return "System"
			}
			if l.Causer.Email == "" {
				return l.Causer.Name
			}
			return l.Causer.Name + " (" + l.Causer.Email + ")"
		}).
		Register("created_at", func(l *dto.ActivityLog) string {
			date := formatTimestamp(l.CreatedAt, dateTimeLayout)
			if l.CreatedAtHuman == "" {
				return date
			}
			return l.CreatedAtHuman + " (" + date + ")"
		}).
		WithDefaults(
			table.Column[dto.ActivityLog]{Key: "description", Header: "Description"},
			table.Column[dto.ActivityLog]{Key: "log_name", Header: "Log Name"},
			table.Column[dto.ActivityLog]{Key: "event", Header: "Event"},
			table.Column[dto.ActivityLog]{Key: "subject_type", Header: "Subject"},
			table.Column[dto.ActivityLog]{Key: "causer_type", Header: "Causer"},
			table.Column[dto.ActivityLog]{Key: "created_at", Header: "Date", Sortable: true},
		).
		WithActions(actionsColumn[dto.ActivityLog](ActivityLogActions, checker))
}

func ActivityLogPage(checker gate.Checker) *table.Page[dto.ActivityLog] {
	return &table.Page[dto.ActivityLog]{
		Title:            "Activity Logs",
		Description:      "Track all activities in the system.",
		Checker:          checker,
		EmptyDescription: "No activity has been recorded yet",
		Registry:         ActivityLogRegistry(checker),
	}
}
