package api

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/santhossiva2002/taskflow/domain"
)

const (
	userNameHeader = "X-User-Name"
	userRoleHeader = "X-User-Role"
)

// actorFrom reads the acting identity from the request headers. The role is
// advisory only; nothing here performs authorization. The name is required
// because every derived activity record stamps it.
func actorFrom(c echo.Context) (domain.Identity, error) {
	name := strings.TrimSpace(c.Request().Header.Get(userNameHeader))
	if name == "" {
		return domain.Identity{}, errors.New("missing " + userNameHeader + " header")
	}
	role := domain.RoleUser
	if c.Request().Header.Get(userRoleHeader) == string(domain.RoleAdmin) {
		role = domain.RoleAdmin
	}
	return domain.Identity{Name: name, Role: role}, nil
}
