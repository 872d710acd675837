package util

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

type ContextKey string

func (c ContextKey) String() string {
	return "adminctl_" + string(c)
}

var FiberContextKey = ContextKey("fiber")
var UserContextKey = ContextKey("user")
var IpContextKey ContextKey = "ip"
var RequestIDContextKey ContextKey = "request_id"

func InjectFiberIntoContext(ctx context.Context, c *fiber.Ctx) context.Context {
	return context.WithValue(ctx, FiberContextKey, c)
}

func GetFiberFromContext(ctx context.Context) *fiber.Ctx {
	return ctx.Value(FiberContextKey).(*fiber.Ctx) //nolint:forcetypeassert
}

func GetIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(IpContextKey).(string)

	return ip
}

func GetRequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDContextKey).(string)

	return id
}
