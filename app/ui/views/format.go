package views

import (
	"adminctl/app/ui/gate"
	"adminctl/app/ui/table"
	"strings"
	"time"
)

const dateTimeLayout = "Jan 02, 2006 15:04"

const dateLayout = "Jan 02, 2006"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTimestamp(value string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// formatTimestamp renders a backend timestamp with layout, passing
// unparsable values through.
func formatTimestamp(value, layout string) string {
	if value == "" {
		return table.Placeholder
	}

	t, ok := parseTimestamp(value)
	if !ok {
		return value
	}

	return t.Format(layout)
}

func orPlaceholder(value string) string {
	if value == "" {
		return table.Placeholder
	}

	return value
}

func actionsColumn[T any](actions []gate.Action, checker gate.Checker) table.Column[T] {
	return table.Column[T]{
		Key:    "actions",
		Header: "Actions",
		Render: func(*T) string {
			allowed := gate.FilterActions(actions, checker)
			if len(allowed) == 0 {
				return table.Placeholder
			}

			labels := make([]string, 0, len(allowed))
			for _, action := range allowed {
				labels = append(labels, action.Label)
			}

			return strings.Join(labels, " | ")
		},
	}
}
