package telemetry

import (
	"adminctl/app/config"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	Requests      metric.Int64Counter
	RequestErrors metric.Int64Counter
	Syncs         metric.Int64Counter
	SyncFailures  metric.Int64Counter
}

func NewMetrics(_ *config.Config, meter metric.Meter) (*Metrics, error) {
	requests, err := meter.Int64Counter("adminctl.http.requests",
		metric.WithDescription("Backend API requests sent"),
	)
	if err != nil {
		return nil, oops.Errorf("failed to create requests counter: %w", err)
	}

	requestErrors, err := meter.Int64Counter("adminctl.http.errors",
		metric.WithDescription("Backend API requests that returned an error"),
	)
	if err != nil {
		return nil, oops.Errorf("failed to create errors counter: %w", err)
	}

	syncs, err := meter.Int64Counter("adminctl.permsync.runs",
		metric.WithDescription("Permission sync attempts"),
	)
	if err != nil {
		return nil, oops.Errorf("failed to create sync counter: %w", err)
	}

	syncFailures, err := meter.Int64Counter("adminctl.permsync.failures",
		metric.WithDescription("Permission sync attempts that kept the previous snapshot"),
	)
	if err != nil {
		return nil, oops.Errorf("failed to create sync failures counter: %w", err)
	}

	return &Metrics{
		Requests:      requests,
		RequestErrors: requestErrors,
		Syncs:         syncs,
		SyncFailures:  syncFailures,
	}, nil
}
