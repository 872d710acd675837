// Package devserver is an in-memory stand-in for the admin REST backend,
// for local development and end-to-end tests.
package devserver

import (
	"adminctl/app/config"
	"adminctl/app/devserver/controller"
	"adminctl/app/devserver/middleware"
	"adminctl/app/devserver/routes"
	"adminctl/app/devserver/store"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/do"
	"github.com/samber/oops"
)

type Server struct {
	cfg *config.Config
	app *fiber.App
}

// Provide registers the seeded store, the metrics and the server.
func Provide(di *do.Injector) {
	do.Provide(di, NewStore)
	do.Provide(di, middleware.NewMetrics)
	do.Provide(di, New)
}

func NewStore(di *do.Injector) (*store.Store, error) {
	cfg := do.MustInvoke[*config.Config](di)

	st := store.New()
	if err := st.Seed(cfg.DevServer.AdminPassword); err != nil {
		return nil, oops.Errorf("failed to seed store: %w", err)
	}

	return st, nil
}

func New(di *do.Injector) (*Server, error) {
	cfg := do.MustInvoke[*config.Config](di)

	app := fiber.New(fiber.Config{
		AppName:               "adminctl devserver",
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler,
		ReadTimeout:           time.Second * 60,
		WriteTimeout:          time.Second * 60,
		BodyLimit:             16 * 1024 * 1024,
	})

	middleware.FiberMiddleware(app, di)
	routes.APIRoutes(app, di, controller.NewServer(di))
	routes.NotFoundRoute(app)

	return &Server{
		cfg: cfg,
		app: app,
	}, nil
}

func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on the configured port until Shutdown.
func (s *Server) Listen() error {
	addr := fmt.Sprintf(":%d", s.cfg.DevServer.HttpPort)

	slog.Info("Development server listening",
		slog.String("addr", addr),
		slog.String("base_url", fmt.Sprintf("http://127.0.0.1:%d%s/", s.cfg.DevServer.HttpPort, routes.Prefix)),
	)

	if err := s.app.Listen(addr); err != nil {
		return oops.Errorf("app.Listen: %w", err)
	}

	return nil
}

func (s *Server) Serve(ln net.Listener) error {
	if err := s.app.Listener(ln); err != nil {
		return oops.Errorf("app.Listener: %w", err)
	}

	return nil
}

func (s *Server) Shutdown() error {
	if err := s.app.ShutdownWithTimeout(5 * time.Second); err != nil {
		return oops.Errorf("app.Shutdown: %w", err)
	}

	return nil
}
