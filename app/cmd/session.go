package cmd

import (
	"adminctl/app/dto"
	"adminctl/app/service/pubsub"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/samber/do"
	"github.com/spf13/cobra"
)

var checkPermissions []string

var Session = &cobra.Command{
	Use:   "session",
	Short: "Inspect and synchronise the stored session",
}

var sessionStatus = &cobra.Command{
	Use:   "status",
	Short: "Show the session and its permission snapshot",
	RunE: run(func(cmd *cobra.Command, _ []string, a *app) error {
		out := cmd.OutOrStdout()

		usr := a.session.UserInfo()
		if !a.session.HasToken() || usr == nil {
			fmt.Fprintln(out, "Signed out")
			return nil
		}

		now := time.Now()
		lastSync, _ := a.sync.LastSync()

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "User\t%s <%s>\n", usr.Name, usr.Email)
		fmt.Fprintf(w, "Snapshot\t%s\n", formatSince(a.session.SyncedAt(), now))
		fmt.Fprintf(w, "Last sync\t%s\n", formatSince(lastSync, now))
		fmt.Fprintf(w, "Stale\t%t\n", a.session.Stale())
		for _, name := range checkPermissions {
			fmt.Fprintf(w, "%s\t%s\n", name, a.session.Evaluate(name))
		}

		return w.Flush()
	}),
}

var sessionSync = &cobra.Command{
	Use:   "sync",
	Short: "Refresh the permission snapshot now",
	RunE: run(func(cmd *cobra.Command, _ []string, a *app) error {
		if !a.session.HasToken() {
			return signInRequired()
		}

		if err := a.sync.SyncNow(a.ctx); err != nil {
			if !a.session.HasToken() {
				return signInRequired()
			}

			return err
		}

		usr := a.session.UserInfo()
		fmt.Fprintf(cmd.OutOrStdout(), "Synced, %d permissions granted\n", len(usr.Permissions))

		return nil
	}),
}

var sessionWatch = &cobra.Command{
	Use:   "watch",
	Short: "Keep the permission snapshot in sync until interrupted",
	RunE: run(func(cmd *cobra.Command, _ []string, a *app) error {
		if !a.session.HasToken() {
			return signInRequired()
		}

		ctx, stop := signal.NotifyContext(a.ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		bus := do.MustInvoke[*pubsub.Service](a.di)
		sub := bus.SubscribeSession(func(event dto.SessionEvent) {
			switch event.Kind {
			case dto.SessionUserUpdated:
				slog.InfoContext(ctx, "Permissions synced")
			case dto.SessionLoggedOut:
				slog.WarnContext(ctx, "Session ended",
					slog.String("reason", event.Reason),
				)
			}
		})
		defer bus.Unsubscribe(sub)

		slog.InfoContext(ctx, "Watching session",
			slog.Duration("interval", time.Duration(a.cfg.Sync.Interval)*time.Second),
		)

		if err := a.sync.Run(ctx); err != nil {
			return err
		}

		if !a.session.HasToken() && ctx.Err() == nil {
			return signInRequired()
		}

		return nil
	}),
}

func init() {
	sessionStatus.Flags().StringArrayVar(&checkPermissions, "check", nil, "Permission to evaluate, repeatable")

	Session.AddCommand(sessionStatus, sessionSync, sessionWatch)
}
