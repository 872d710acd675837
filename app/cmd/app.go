package cmd

import (
	"adminctl/app/client/api"
	"adminctl/app/config"
	"adminctl/app/service/activitylog"
	"adminctl/app/service/auth"
	"adminctl/app/service/export"
	"adminctl/app/service/loginhistory"
	"adminctl/app/service/permission"
	"adminctl/app/service/permsync"
	"adminctl/app/service/pubsub"
	"adminctl/app/service/query"
	"adminctl/app/service/role"
	"adminctl/app/service/session"
	"adminctl/app/service/user"
	"adminctl/app/storage"
	"adminctl/app/util/mylog"
	"adminctl/app/util/telemetry"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/samber/do"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

var configPath string

// ErrSignInRequired is returned by commands that need a session when there
// is none, or when the backend ended it.
var ErrSignInRequired = errors.New("sign in required")

func signInRequired() error {
	return oops.
		With("status_code", http.StatusUnauthorized).
		Public("sign in required").
		Wrap(ErrSignInRequired)
}

// Register adds every command to root.
func Register(root *cobra.Command) {
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to config yaml file")

	root.AddCommand(Login, Logout, Whoami, SignUp, ForgotPassword, ResetPassword,
		VerifyEmail, ResendVerification, ChangePassword, Profile)
	root.AddCommand(Users, Roles, Permissions, ActivityLogs, LoginHistory)
	root.AddCommand(Export, Menu, Session, DevServer)
}

// Describe renders err for the terminal: public messages with field errors
// for API failures, the full text otherwise.
func Describe(err error) string {
	if oops.GetPublic(err, "") == "" {
		return err.Error()
	}

	return api.Describe(err)
}

type app struct {
	ctx     context.Context
	di      *do.Injector
	cfg     *config.Config
	session *session.Store
	sync    *permsync.Service
	cleanup []func()
}

// bootstrap builds the client container the same way for every command.
func bootstrap(ctx context.Context) (*app, error) {
	appCtx, cancel := context.WithCancel(ctx)

	a := &app{ctx: appCtx, cleanup: []func(){cancel}}

	di := do.New()
	do.ProvideValue(di, appCtx)
	a.di = di

	cfg, err := config.Load(configPath)
	if err != nil {
		a.Close()
		return nil, oops.Errorf("failed to load config: %w", err)
	}
	do.ProvideValue(di, cfg)
	a.cfg = cfg

	if err = telemetry.InitSentry(cfg); err != nil {
		a.Close()
		return nil, oops.Errorf("failed to init sentry: %w", err)
	}
	a.onClose(func() { sentry.Flush(3 * time.Second) })

	tel, err := telemetry.Init(cfg)
	if err != nil {
		a.Close()
		return nil, oops.Errorf("failed to init telemetry: %w", err)
	}
	a.onClose(func() { tel.Shutdown(context.Background()) })
	do.ProvideValue(di, tel)

	if err = mylog.Init(cfg, tel); err != nil {
		a.Close()
		return nil, oops.Errorf("failed to init logging: %w", err)
	}

	metrics, err := telemetry.NewMetrics(cfg, tel.Meter)
	if err != nil {
		a.Close()
		return nil, oops.Errorf("failed to init metrics: %w", err)
	}
	do.ProvideValue(di, metrics)
	do.ProvideValue(di, telemetry.NewTracing(cfg, tel.Tracer))

	do.Provide(di, storage.New)
	do.Provide(di, pubsub.New)
	do.Provide(di, session.New)
	do.Provide(di, api.New)
	do.Provide(di, query.New)
	do.Provide(di, auth.New)
	do.Provide(di, permsync.New)

	do.Provide(di, user.New)
	do.Provide(di, role.New)
	do.Provide(di, permission.New)
	do.Provide(di, activitylog.New)
	do.Provide(di, loginhistory.New)
	do.Provide(di, export.New)

	a.onClose(func() { _ = di.Shutdown() })

	a.session, err = do.Invoke[*session.Store](di)
	if err != nil {
		a.Close()
		return nil, oops.Errorf("failed to open session: %w", err)
	}

	a.sync = do.MustInvoke[*permsync.Service](di)
	// one-shot commands sync on demand, only `session watch` runs the loop
	a.sync.Detach()

	return a, nil
}

func (a *app) onClose(fn func()) {
	a.cleanup = append(a.cleanup, fn)
}

// Close releases everything bootstrap acquired, newest first.
func (a *app) Close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
	a.cleanup = nil
}

// requireSession refreshes a due permission snapshot and fails when there is
// no session to work with.
func (a *app) requireSession() error {
	if !a.session.HasToken() {
		return signInRequired()
	}

	if _, err := a.sync.SyncIfDue(a.ctx); err != nil {
		slog.DebugContext(a.ctx, "Permission sync failed",
			slog.Any("error", err),
		)
	}

	// a 401 during the sync ended the session
	if !a.session.HasToken() {
		return signInRequired()
	}

	return nil
}

type runFunc func(cmd *cobra.Command, args []string, a *app) error

// run wraps a command body with bootstrap and cleanup.
func run(fn runFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		return fn(cmd, args, a)
	}
}

// authed is run for commands that need a session.
func authed(fn runFunc) func(cmd *cobra.Command, args []string) error {
	return run(func(cmd *cobra.Command, args []string, a *app) error {
		if err := a.requireSession(); err != nil {
			return err
		}

		return fn(cmd, args, a)
	})
}
