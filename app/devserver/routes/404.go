package routes

import (
	"adminctl/app/devserver/mapper"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

func NotFoundRoute(a *fiber.App) {
	a.Use(
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusNotFound).JSON(mapper.Envelope{
				StatusCode: http.StatusNotFound,
				Message:    "Route not found",
			})
		},
	)
}
