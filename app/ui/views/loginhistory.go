package views

import (
	"adminctl/app/dto"
	"adminctl/app/ui/gate"
	"adminctl/app/ui/table"
	"strconv"
)

func LoginHistoryRegistry() *table.Registry[dto.LoginHistory] {
	return table.NewRegistry[dto.LoginHistory]().
		Register("user_id", func(h *dto.LoginHistory) string {
			if h.User == nil {
				if h.UserID == 0 {
					return "Unknown User"
				}
				return "#" + strconv.FormatInt(h.UserID, 10)
			}
			return h.User.Name + " <" + h.User.Email + ">"
		}).
		Register("device", func(h *dto.LoginHistory) string {
			switch {
			case h.Device != "" && h.Browser != "":
				return h.Device + " / " + h.Browser
			case h.Device != "":
				return h.Device
			default:
				return orPlaceholder(h.Browser)
			}
		}).
		Register("login_at", func(h *dto.LoginHistory) string {
			return formatTimestamp(h.LoginAt, dateTimeLayout)
		}).
		Register("logout_at", func(h *dto.LoginHistory) string {
			return formatTimestamp(h.LogoutAt, dateTimeLayout)
		}).
		Register("status", func(h *dto.LoginHistory) string {
			if h.Status == dto.LoginStatusSuccess {
				return "Success"
			}
			return "Failed"
		}).
		WithDefaults(
			table.Column[dto.LoginHistory]{Key: "user_id", Header: "User"},
			table.Column[dto.LoginHistory]{Key: "device", Header: "Device"},
			table.Column[dto.LoginHistory]{Key: "ip_address", Header: "IP Address"},
			table.Column[dto.LoginHistory]{Key: "platform", Header: "Platform"},
			table.Column[dto.LoginHistory]{Key: "login_at", Header: "Login Time", Sortable: true},
			table.Column[dto.LoginHistory]{Key: "status", Header: "Status"},
		)
}

func LoginHistoryPage(checker gate.Checker) *table.Page[dto.LoginHistory] {
	return &table.Page[dto.LoginHistory]{
		Title:            "Login History",
		Description:      "Track user login sessions.",
		Checker:          checker,
		EmptyDescription: "No login sessions recorded yet",
		Registry:         LoginHistoryRegistry(),
	}
}
