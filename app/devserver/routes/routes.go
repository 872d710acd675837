package routes

import (
	"adminctl/app/devserver/controller"
	"adminctl/app/devserver/middleware"
	"adminctl/app/dto"
	"adminctl/app/ui/gate"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/do"
)

const Prefix = "/api/v1"

// APIRoutes mounts every backend endpoint under /api/v1.
func APIRoutes(app *fiber.App, di *do.Injector, server *controller.Server) {
	metrics := do.MustInvoke[*middleware.Metrics](di)

	app.Get("/metrics", metrics.Handler())

	v1 := app.Group(Prefix)
	v1.Get("/healthz", server.HealthCheck)

	authRoutes := v1.Group("/auth")
	authRoutes.Post("/login", middleware.RateLimit(10, 5), server.Login)
	authRoutes.Post("/register", middleware.RateLimit(10, 5), server.Register)
	authRoutes.Post("/forgot-password", middleware.RateLimit(10, 5), server.ForgotPassword)
	authRoutes.Post("/reset-password", server.ResetPassword)
	authRoutes.Post("/verify-email", server.VerifyEmail)
	authRoutes.Post("/resend-verification", middleware.RateLimit(10, 5), server.ResendVerification)

	authed := middleware.NewAuth(di)
	require := func(g gate.Gate) fiber.Handler {
		return middleware.Require(di, g)
	}

	authRoutes.Post("/logout", authed, server.Logout)
	authRoutes.Post("/change-password", authed, server.ChangePassword)
	authRoutes.Put("/profile", authed, server.UpdateProfile)

	v1.Get("/me", authed, server.Me)

	users := v1.Group("/users", authed)
	users.Get("/", require(gate.Permission(dto.PermUsersView)), server.ListUsers)
	users.Get("/export", require(gate.ExportGate("users")), server.ExportUsers)
	users.Post("/", require(gate.Permission(dto.PermUsersCreate, dto.PermUsersEdit)), server.SaveUser)
	users.Get("/:id", require(gate.Permission(dto.PermUsersView)), server.GetUser)
	users.Delete("/:ids", require(gate.Permission(dto.PermUsersDelete)), server.DeleteUsers)

	roles := v1.Group("/roles", authed)
	roles.Get("/", require(gate.Permission(dto.PermRolesView)), server.ListRoles)
	roles.Get("/all", server.AllRoles)
	roles.Get("/modulePermissions", server.ModulePermissions)
	roles.Get("/export", require(gate.ExportGate("roles")), server.ExportRoles)
	roles.Post("/", require(gate.Permission(dto.PermRolesCreate, dto.PermRolesEdit)), server.SaveRole)
	roles.Get("/:id/permissions", require(gate.Permission(dto.PermRolesView)), server.RolePermissions)
	roles.Put("/:id/permissions", require(gate.Permission(dto.PermRolesEdit)), server.SetRolePermissions)
	roles.Get("/:id", require(gate.Permission(dto.PermRolesView)), server.GetRole)
	roles.Delete("/:ids", require(gate.Permission(dto.PermRolesDelete)), server.DeleteRoles)

	v1.Get("/permissions", authed, server.ListPermissions)

	logs := v1.Group("/activity-logs", authed)
	logs.Get("/", require(gate.Permission(dto.PermActivityLogsView)), server.ListActivityLogs)
	logs.Get("/stats", require(gate.Permission(dto.PermActivityLogsView)), server.ActivityStats)
	logs.Get("/export", require(gate.ExportGate("activity-logs")), server.ExportActivityLogs)
	logs.Get("/:id", require(gate.Permission(dto.PermActivityLogsView)), server.GetActivityLog)
	logs.Delete("/:ids", require(gate.Permission(dto.PermActivityLogsDelete)), server.DeleteActivityLogs)

	history := v1.Group("/login-history", authed)
	history.Get("/", server.ListLoginHistory)
	history.Get("/export", require(gate.ExportGate("login-history")), server.ExportLoginHistory)
	history.Get("/:id", server.GetLoginHistory)
}
