// nolint: wrapcheck
package middleware

import (
	"adminctl/app/client/api"
	"adminctl/app/devserver/mapper"
	"adminctl/app/util"
	"errors"
	"log/slog"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/oops"
)

func ErrorHandler(ctx *fiber.Ctx, err error) error {
	statusCode := http.StatusInternalServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		statusCode = fiberErr.Code
	}

	var fields map[string][]string

	if oopsErr, ok := oops.AsOops(err); ok {
		statusCodeOpt := oopsErr.Context()["status_code"]
		if statusCodeOpt != nil {
			statusCode, _ = statusCodeOpt.(int)
		}

		fields, _ = oopsErr.Context()["fields"].(map[string][]string)
	}

	if statusCode == http.StatusInternalServerError {
		sentry.CaptureException(err)
		slog.ErrorContext(ctx.UserContext(), "Internal Server Error",
			slog.String("request_id", util.GetRequestIDFromContext(ctx.UserContext())),
			slog.Any("error", err),
		)
	}

	message := oops.GetPublic(err, api.StatusMessage(statusCode))
	if message == "" {
		message = http.StatusText(statusCode)
	}

	ctx.Response().Header.Set("Content-Type", "application/json")
	ctx.Status(statusCode)

	return ctx.JSON(mapper.Envelope{
		StatusCode: statusCode,
		Message:    message,
		Errors:     fields,
	})
}
