package middleware

import (
	"adminctl/app/config"
	"adminctl/app/devserver/store"
	"adminctl/app/dto"
	"adminctl/app/ui/gate"
	"adminctl/app/util"
	"context"
	"net/http"
	"slices"
	"strconv"
	"time"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/do"
	"github.com/samber/oops"
)

const tokenLocalsKey = "token"

// Claims are the parts of a verified token the handlers need.
type Claims struct {
	ID        string
	ExpiresAt time.Time
}

func unauthenticated() error {
	return oops.
		With("status_code", http.StatusUnauthorized).
		Public("Unauthenticated.").
		Errorf("unauthenticated")
}

// NewAuth verifies the bearer token and loads its user. Revoked tokens and
// deleted or suspended users are rejected with 401.
func NewAuth(di *do.Injector) fiber.Handler {
	cfg := do.MustInvoke[*config.Config](di)
	st := do.MustInvoke[*store.Store](di)

	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.DevServer.JWTSecret)},
		ContextKey: tokenLocalsKey,
		ErrorHandler: func(_ *fiber.Ctx, _ error) error {
			return unauthenticated()
		},
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals(tokenLocalsKey).(*jwt.Token)
			if !ok {
				return unauthenticated()
			}

			subject, err := token.Claims.GetSubject()
			if err != nil {
				return unauthenticated()
			}

			userID, err := strconv.ParseInt(subject, 10, 64)
			if err != nil {
				return unauthenticated()
			}

			claims, _ := token.Claims.(jwt.MapClaims)
			jti, _ := claims["jti"].(string)
			if jti == "" || st.Revoked(jti) {
				return unauthenticated()
			}

			usr, err := st.User(userID)
			if err != nil || usr.Status == dto.UserStatusSuspended {
				return unauthenticated()
			}

			var expiresAt time.Time
			if exp, err := token.Claims.GetExpirationTime(); err == nil && exp != nil {
				expiresAt = exp.Time
			}

			c.Locals(string(util.UserContextKey), usr)
			c.Locals(tokenLocalsKey+"_claims", Claims{ID: jti, ExpiresAt: expiresAt})
			c.SetUserContext(context.WithValue(c.UserContext(), util.UserContextKey, usr))

			return c.Next()
		},
	})
}

func CurrentUser(c *fiber.Ctx) (store.User, bool) {
	usr, ok := c.Locals(string(util.UserContextKey)).(store.User)

	return usr, ok
}

func CurrentClaims(c *fiber.Ctx) (Claims, bool) {
	claims, ok := c.Locals(tokenLocalsKey + "_claims").(Claims)

	return claims, ok
}

// grants answers permission checks for one user from its flattened grant
// list.
type grants struct {
	permissions []string
	roles       []string
}

func (g grants) HasPermission(names ...string) bool {
	for _, name := range names {
		if slices.Contains(g.permissions, name) {
			return true
		}
	}

	return false
}

func (g grants) HasAllPermissions(names ...string) bool {
	for _, name := range names {
		if !slices.Contains(g.permissions, name) {
			return false
		}
	}

	return true
}

func (g grants) HasRole(names ...string) bool {
	for _, name := range names {
		if slices.Contains(g.roles, name) {
			return true
		}
	}

	return false
}

// Checker returns the permission view of the authenticated user.
func Checker(c *fiber.Ctx, st *store.Store) (gate.Checker, error) {
	usr, ok := CurrentUser(c)
	if !ok {
		return nil, unauthenticated()
	}

	granted, err := st.Granted(usr)
	if err != nil {
		return nil, oops.Errorf("store.Granted: %w", err)
	}

	return grants{permissions: granted, roles: usr.Roles}, nil
}

// Require rejects requests of users failing g with 403.
func Require(di *do.Injector, g gate.Gate) fiber.Handler {
	st := do.MustInvoke[*store.Store](di)

	return func(c *fiber.Ctx) error {
		checker, err := Checker(c, st)
		if err != nil {
			return err
		}

		if err := gate.Require(checker, g); err != nil {
			return err
		}

		return c.Next()
	}
}
