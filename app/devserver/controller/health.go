package controller

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.szostok.io/version"
)

func (s *Server) HealthCheck(c *fiber.Ctx) error {
	info := version.Get()

	return respond(c, http.StatusOK, "ok", fiber.Map{
		"version":    info.Version,
		"build_date": info.BuildDate,
	})
}
