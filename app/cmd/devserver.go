package cmd

import (
	"adminctl/app/config"
	"adminctl/app/devserver"
	"adminctl/app/util/mylog"
	"adminctl/app/util/telemetry"
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/samber/do"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

var devServerPort int

var DevServer = &cobra.Command{
	Use:   "devserver",
	Short: "Run the in-memory backend stub",
	RunE:  runDevServer,
}

func init() {
	DevServer.Flags().IntVarP(&devServerPort, "port", "p", 0, "Port to listen on, overrides devserver.http_port")
}

func runDevServer(cmd *cobra.Command, _ []string) error {
	appCtx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	di := do.New()
	do.ProvideValue(di, appCtx)

	cfg, err := config.LoadDevServer(configPath)
	if err != nil {
		return oops.Errorf("failed to load config: %w", err)
	}
	if devServerPort != 0 {
		cfg.DevServer.HttpPort = devServerPort
	}
	do.ProvideValue(di, cfg)

	if err = telemetry.InitSentry(cfg); err != nil {
		return oops.Errorf("failed to init sentry: %w", err)
	}
	defer sentry.Flush(3 * time.Second)

	tel, err := telemetry.Init(cfg)
	if err != nil {
		return oops.Errorf("failed to init telemetry: %w", err)
	}
	defer tel.Shutdown(appCtx)
	do.ProvideValue(di, tel)

	if err = mylog.Init(cfg, tel); err != nil {
		return oops.Errorf("failed to init logging: %w", err)
	}

	metrics, err := telemetry.NewMetrics(cfg, tel.Meter)
	if err != nil {
		return oops.Errorf("failed to init metrics: %w", err)
	}
	do.ProvideValue(di, metrics)
	do.ProvideValue(di, telemetry.NewTracing(cfg, tel.Tracer))

	devserver.Provide(di)

	server, err := do.Invoke[*devserver.Server](di)
	if err != nil {
		return oops.Errorf("failed to build devserver: %w", err)
	}

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		slog.Info("Shutting down server...")

		_ = server.Shutdown()
		cancel()
	}()

	if err := server.Listen(); err != nil {
		slog.Warn("Server stopped",
			slog.Any("error", err),
		)
	}

	slog.Info("Waiting for services to finish...")
	_ = di.Shutdown()

	return nil
}
