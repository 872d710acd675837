// Package testkit builds the base dependency container used by package tests.
package testkit

import (
	"adminctl/app/config"
	"adminctl/app/util/telemetry"
	"context"
	"testing"

	"github.com/samber/do"
	"github.com/stretchr/testify/require"
)

// Config returns a valid config rooted in a per-test state directory.
func Config(t testing.TB, baseURL string) *config.Config {
	t.Helper()

	cfg := &config.Config{
		BaseURL:  baseURL,
		StateDir: t.TempDir(),
	}
	cfg.HTTP.Timeout = 5
	cfg.HTTP.RetryAttempts = 3
	cfg.HTTP.RetryDelay = 1
	cfg.Session.TokenTTL = 7 * 24
	cfg.Sync.Interval = 60
	cfg.Query.StaleTime = 30
	cfg.Log.Level = "debug"
	cfg.Telemetry.ServiceName = "adminctl-test"
	cfg.DevServer.HttpPort = 8000
	cfg.DevServer.JWTSecret = "test-secret"
	cfg.DevServer.AdminPassword = "password"

	require.NoError(t, config.Validate(cfg))

	return cfg
}

// NewInjector provides the app context, config and no-op telemetry. Callers
// register the services under test on top of it.
func NewInjector(t testing.TB, cfg *config.Config) *do.Injector {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())

	di := do.New()
	do.ProvideValue(di, ctx)
	do.ProvideValue(di, cfg)

	tel := telemetry.NewNoop()
	do.ProvideValue(di, tel)
	do.ProvideValue(di, telemetry.NewTracing(cfg, tel.Tracer))

	metrics, err := telemetry.NewMetrics(cfg, tel.Meter)
	require.NoError(t, err)
	do.ProvideValue(di, metrics)

	t.Cleanup(func() {
		cancel()
		_ = di.Shutdown()
	})

	return di
}
