package middleware

import (
	"net/http"

	"movie-catalog/pkg/logger"
	"movie-catalog/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Roles carried by a session principal.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Actions gated by RequirePermission.
const (
	ActionUsersList   = "users:list"
	ActionUsersDetail = "users:detail"
	ActionUsersCreate = "users:create"
	ActionUsersEdit   = "users:edit"
	ActionUsersDelete = "users:delete"

	ActionVideosList   = "videos:list"
	ActionVideosDetail = "videos:detail"
	ActionVideosCreate = "videos:create"
	ActionVideosEdit   = "videos:edit"
	ActionVideosDelete = "videos:delete"
)

// requiredRole maps each gated action to the minimum role that may perform
// it. User administration is admin only; catalog actions are open to any
// authenticated principal.
var requiredRole = map[string]string{
	ActionUsersList:   RoleAdmin,
	ActionUsersDetail: RoleAdmin,
	ActionUsersCreate: RoleAdmin,
	ActionUsersEdit:   RoleAdmin,
	ActionUsersDelete: RoleAdmin,

	ActionVideosList:   RoleMember,
	ActionVideosDetail: RoleMember,
	ActionVideosCreate: RoleMember,
	ActionVideosEdit:   RoleMember,
	ActionVideosDelete: RoleMember,
}

// Allowed is the pure permission predicate over (role, action). Admin
// overrides everything; unknown actions are denied.
func Allowed(role, action string) bool {
	required, ok := requiredRole[action]
	if !ok {
		return false
	}
	if role == RoleAdmin {
		return true
	}
	return role == required
}

// RequirePermission rejects requests whose principal lacks permission for
// the given action. It MUST be used after RequireAuth.
func RequirePermission(action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			principal, ok := PrincipalFromContext(c)
			if !ok {
				log.Error("Permission check without authenticated principal",
					zap.String("action", action))
				prometheus.RecordAuthError("missing_principal")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}

			if !Allowed(principal.Role, action) {
				log.Warn("Request forbidden",
					zap.String("action", action),
					zap.String("role", principal.Role))
				prometheus.RecordAuthError("forbidden")
				return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
			}

			return next(c)
		}
	}
}
