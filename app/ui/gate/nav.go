package gate

import "adminctl/app/dto"

type NavItem struct {
	Title string
	URL   string
	Gate  Gate
	Items []NavItem
}

type NavGroup struct {
	Title string
	Items []NavItem
}

func DefaultNavigation() []NavGroup {
	return []NavGroup{
		{
			Title: "General",
			Items: []NavItem{
				{Title: "Dashboard", URL: "/"},
				{Title: "Users", URL: "/users", Gate: Permission(dto.PermUsersView)},
				{Title: "Roles", URL: "/roles", Gate: Permission(dto.PermRolesView)},
			},
		},
		{
			Title: "Other",
			Items: []NavItem{
				{
					Title: "Settings",
					Items: []NavItem{
						{Title: "Profile", URL: "/settings"},
						{Title: "Account", URL: "/settings/account"},
						{Title: "Security", URL: "/settings/security"},
						{Title: "Appearance", URL: "/settings/appearance"},
						{Title: "Notifications", URL: "/settings/notifications"},
						{Title: "Display", URL: "/settings/display"},
					},
				},
				{Title: "Activity Logs", URL: "/activity-logs", Gate: Permission(dto.PermActivityLogsView)},
				{Title: "Login History", URL: "/login-history"},
				{Title: "Help Center", URL: "/help-center"},
			},
		},
	}
}

// FilterNav keeps the items c may see. Parents left without children and
// groups left empty are dropped.
func FilterNav(groups []NavGroup, c Checker) []NavGroup {
	var result []NavGroup

	for _, group := range groups {
		items := filterItems(group.Items, c)
		if len(items) == 0 {
			continue
		}

		result = append(result, NavGroup{Title: group.Title, Items: items})
	}

	return result
}

func filterItems(items []NavItem, c Checker) []NavItem {
	var result []NavItem

	for _, item := range items {
		if !item.Gate.Allows(c) {
			continue
		}

		if len(item.Items) > 0 {
			children := filterItems(item.Items, c)
			if len(children) == 0 && item.URL == "" {
				continue
			}
			item.Items = children
		}

		result = append(result, item)
	}

	return result
}

// Action is a row or page action guarded by a gate.
type Action struct {
	Name  string
	Label string
	Gate  Gate
}

func FilterActions(actions []Action, c Checker) []Action {
	var result []Action
	for _, action := range actions {
		if action.Gate.Allows(c) {
			result = append(result, action)
		}
	}

	return result
}
