package middleware

import (
	"adminctl/app/util"
	"adminctl/app/util/telemetry"
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/elliotchance/pie/v2"
	sentryotel "github.com/getsentry/sentry-go/otel"
	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/rofleksey/meg"
	"github.com/samber/do"
	"github.com/samber/oops"
	slogfiber "github.com/samber/slog-fiber"
)

const RequestIDHeader = "X-Request-ID"

// Dev frontends that may call the stub from a browser.
var devOrigins = []string{
	"http://localhost", "https://localhost",
	"http://localhost:3000", "http://localhost:5173",
	"http://127.0.0.1:3000", "http://127.0.0.1:5173",
}

// Probes and scrapes stay out of the access log.
var quietPaths = []string{"/api/v1/healthz", "/metrics"}

func FiberMiddleware(app *fiber.App, di *do.Injector) {
	tel := do.MustInvoke[*telemetry.Telemetry](di)
	metrics := do.MustInvoke[*Metrics](di)

	app.Use(cors.New(cors.Config{
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, " + RequestIDHeader + ", Sentry-Trace, Baggage",
		AllowMethods:     "POST, GET, OPTIONS, DELETE, PUT, PATCH, HEAD",
		ExposeHeaders:    RequestIDHeader,
		AllowCredentials: true,
		AllowOriginsFunc: func(origin string) bool {
			return pie.Contains(devOrigins, origin)
		},
	}))

	app.Use(otelfiber.Middleware(
		otelfiber.WithMeterProvider(tel.MeterProvider),
		otelfiber.WithTracerProvider(tel.TracerProvider),
		otelfiber.WithPropagators(sentryotel.NewSentryPropagator()),
		otelfiber.WithCollectClientIP(true),
	))

	app.Use(metrics.Middleware())
	app.Use(RequestContext)
	app.Use(accessLog())
	app.Use(recover.New(recover.Config{
		EnableStackTrace:  true,
		StackTraceHandler: logPanic,
	}))
}

// RequestContext carries the fiber ctx, the client ip and the request id
// in the user context. The client's X-Request-ID is kept and echoed back,
// one is generated when it is missing.
func RequestContext(c *fiber.Ctx) error {
	requestID := c.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
		c.Request().Header.Set(RequestIDHeader, requestID)
	}
	c.Set(RequestIDHeader, requestID)

	ctx := util.InjectFiberIntoContext(c.UserContext(), c)
	ctx = context.WithValue(ctx, util.IpContextKey, c.IP())
	ctx = context.WithValue(ctx, util.RequestIDContextKey, requestID)
	c.SetUserContext(ctx)

	return c.Next()
}

// accessLog records mutations and failures; successful reads are noise
// while the CLI pages through lists.
func accessLog() fiber.Handler {
	return slogfiber.NewWithConfig(slog.Default(), slogfiber.Config{
		Filters: []slogfiber.Filter{
			func(c *fiber.Ctx) bool {
				return !pie.Contains(quietPaths, c.Path())
			},
			func(c *fiber.Ctx) bool {
				status := c.Response().StatusCode()
				return c.Method() != fiber.MethodGet || status >= http.StatusBadRequest
			},
		},
		WithRequestID: true,
		WithTraceID:   true,
	})
}

func logPanic(c *fiber.Ctx, e any) {
	slog.ErrorContext(c.UserContext(), "Handler panicked",
		slog.String("route", c.Method()+" "+c.Path()),
		slog.String("request_id", util.GetRequestIDFromContext(c.UserContext())),
		slog.Any("error", oops.Errorf("panic: %v", e)),
		slog.String("stack", meg.TrimSuffixToNRunes(string(debug.Stack()), 2048)),
	)
}
