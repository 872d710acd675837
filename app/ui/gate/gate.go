package gate

import (
	"adminctl/app/client/api"
	"errors"
	"net/http"
	"strings"

	"github.com/samber/oops"
)

var ErrForbidden = errors.New("forbidden")

// Checker is the permission view of the session.
type Checker interface {
	HasPermission(names ...string) bool
	HasAllPermissions(names ...string) bool
	HasRole(names ...string) bool
}

// Gate describes who may see an element. Every non-empty condition must
// hold; an empty gate lets everyone through.
type Gate struct {
	// Any of these permissions
	Any []string
	// All of these permissions
	All []string
	// Any of these roles
	Roles []string
}

func Permission(names ...string) Gate {
	return Gate{Any: names}
}

func AllPermissions(names ...string) Gate {
	return Gate{All: names}
}

func Role(names ...string) Gate {
	return Gate{Roles: names}
}

func (g Gate) IsZero() bool {
	return len(g.Any) == 0 && len(g.All) == 0 && len(g.Roles) == 0
}

func (g Gate) Allows(c Checker) bool {
	if len(g.Any) > 0 && !c.HasPermission(g.Any...) {
		return false
	}
	if len(g.All) > 0 && !c.HasAllPermissions(g.All...) {
		return false
	}
	if len(g.Roles) > 0 && !c.HasRole(g.Roles...) {
		return false
	}

	return true
}

func (g Gate) String() string {
	var parts []string
	if len(g.Any) > 0 {
		parts = append(parts, "any of ["+strings.Join(g.Any, ", ")+"]")
	}
	if len(g.All) > 0 {
		parts = append(parts, "all of ["+strings.Join(g.All, ", ")+"]")
	}
	if len(g.Roles) > 0 {
		parts = append(parts, "role in ["+strings.Join(g.Roles, ", ")+"]")
	}
	if len(parts) == 0 {
		return "everyone"
	}

	return strings.Join(parts, " and ")
}

// Require returns a 403 error when c does not pass g.
func Require(c Checker, g Gate) error {
	if g.Allows(c) {
		return nil
	}

	return oops.
		With("status_code", http.StatusForbidden).
		With("gate", g.String()).
		Public(api.MsgForbidden).
		Errorf("%w: requires %s", ErrForbidden, g)
}

// ExportGate is the permission guarding exports of a resource.
func ExportGate(resource string) Gate {
	return Permission(strings.ReplaceAll(strings.Trim(resource, "/"), "-", "_") + ".export")
}
