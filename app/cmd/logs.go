package cmd

import (
	"adminctl/app/dto"
	"adminctl/app/service/activitylog"
	"adminctl/app/service/loginhistory"
	"adminctl/app/ui/gate"
	"adminctl/app/ui/table"
	"adminctl/app/ui/views"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/samber/do"
	"github.com/spf13/cobra"
)

var (
	activityListOpts listOptions
	loginListOpts    listOptions
)

var ActivityLogs = &cobra.Command{
	Use:   "activity-logs",
	Short: "Browse the audit trail",
}

var activityList = &cobra.Command{
	Use:   "list",
	Short: "List activity log entries",
	RunE: authed(func(cmd *cobra.Command, _ []string, a *app) error {
		if err := gate.Require(a.session, gate.Permission(dto.PermActivityLogsView)); err != nil {
			return err
		}

		screen := newScreen(a, views.ActivityLogPage(a.session), activitylog.Path)

		return showList(a.ctx, cmd.OutOrStdout(), screen, &activityListOpts)
	}),
}

var activityShow = &cobra.Command{
	Use:   "show ID",
	Short: "Show one activity log entry",
	Args:  cobra.ExactArgs(1),
	RunE: authed(func(cmd *cobra.Command, args []string, a *app) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		entry, err := do.MustInvoke[*activitylog.Service](a.di).Get(a.ctx, id)
		if err != nil {
			return err
		}

		return printRecord(cmd.OutOrStdout(), views.ActivityLogRegistry(a.session), entry,
			"description", "log_name", "event", "subject_type", "causer_type", "created_at")
	}),
}

var activityDelete = &cobra.Command{
	Use:   "delete ID...",
	Short: "Delete activity log entries",
	Args:  cobra.MinimumNArgs(1),
	RunE: authed(func(cmd *cobra.Command, args []string, a *app) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}

		svc := do.MustInvoke[*activitylog.Service](a.di)
		flow := &views.DeleteFlow[dto.ActivityLog]{
			Screen:   newScreen(a, views.ActivityLogPage(a.session), activitylog.Path),
			Mutation: svc.DeleteMutation(),
			ID:       func(l *dto.ActivityLog) int64 { return l.ID },
		}
		defer flow.Screen.Close()

		return deleteRows(a.ctx, cmd.OutOrStdout(), a, gate.Permission(dto.PermActivityLogsDelete), flow, svc.Get, ids)
	}),
}

var activityStats = &cobra.Command{
	Use:   "stats",
	Short: "Show activity counters",
	RunE: authed(func(cmd *cobra.Command, _ []string, a *app) error {
		if err := gate.Require(a.session, gate.Permission(dto.PermActivityLogsView)); err != nil {
			return err
		}

		stats, err := do.MustInvoke[*activitylog.Service](a.di).Stats(a.ctx)
		if err != nil {
			return err
		}

		return printStats(cmd.OutOrStdout(), stats)
	}),
}

var LoginHistory = &cobra.Command{
	Use:   "login-history",
	Short: "Browse sign-in attempts",
}

var loginList = &cobra.Command{
	Use:   "list",
	Short: "List sign-in attempts",
	RunE: authed(func(cmd *cobra.Command, _ []string, a *app) error {
		screen := newScreen(a, views.LoginHistoryPage(a.session), loginhistory.Path)

		return showList(a.ctx, cmd.OutOrStdout(), screen, &loginListOpts)
	}),
}

var loginShow = &cobra.Command{
	Use:   "show ID",
	Short: "Show one sign-in attempt",
	Args:  cobra.ExactArgs(1),
	RunE: authed(func(cmd *cobra.Command, args []string, a *app) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		entry, err := do.MustInvoke[*loginhistory.Service](a.di).Get(a.ctx, id)
		if err != nil {
			return err
		}

		return printRecord(cmd.OutOrStdout(), views.LoginHistoryRegistry(), entry,
			"user_id", "ip_address", "device", "location", "login_at", "logout_at", "status")
	}),
}

func init() {
	activityListOpts.bind(activityList, "log_name, event")
	ActivityLogs.AddCommand(activityList, activityShow, activityDelete, activityStats)

	loginListOpts.bind(loginList, "status, user_id")
	LoginHistory.AddCommand(loginList, loginShow)
}

// printRecord prints the given fields of row as label/value lines using the
// same renderers as the list columns.
func printRecord[T any](out io.Writer, registry *table.Registry[T], row *T, keys ...string) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, key := range keys {
		fmt.Fprintf(w, "%s\t%s\n", table.Capitalize(key), registry.Lookup(key)(row))
	}

	return w.Flush()
}

func printStats(out io.Writer, stats *dto.ActivityLogStats) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Total\t%d\n", stats.TotalActivities)
	fmt.Fprintf(w, "Today\t%d\n", stats.TodayActivities)
	fmt.Fprintf(w, "This week\t%d\n", stats.WeekActivities)
	fmt.Fprintf(w, "This month\t%d\n", stats.MonthActivities)

	printCounts(w, "By log", stats.ByLogName)
	printCounts(w, "By event", stats.ByEvent)

	return w.Flush()
}

func printCounts(w io.Writer, title string, counts map[string]int64) {
	if len(counts) == 0 {
		return
	}

	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Fprintf(w, "%s\t\n", title)
	for _, key := range keys {
		fmt.Fprintf(w, "  %s\t%d\n", key, counts[key])
	}
}
