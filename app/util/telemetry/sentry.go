package telemetry

import (
	"adminctl/app/config"

	"github.com/getsentry/sentry-go"
	"github.com/samber/oops"
	"go.szostok.io/version"
)

func InitSentry(cfg *config.Config) error {
	if cfg.Sentry.DSN == "" {
		return nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Release:          version.Get().Version,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
	}); err != nil {
		return oops.Errorf("sentry.Init: %w", err)
	}

	return nil
}
