package middleware

import (
	"net/http"

	"movie-catalog/pkg/logger"
	"movie-catalog/pkg/session"
	"movie-catalog/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// PrincipalKey is the echo context key under which RequireAuth stores the
// authenticated principal.
const PrincipalKey = "principal"

// RequireAuth rejects requests that carry no authenticated session principal.
// It runs before any handler logic and never touches the store.
func RequireAuth(sessions *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			principal, ok := sessions.Principal(c.Request())
			if !ok {
				log.Warn("Unauthenticated request rejected",
					zap.String("path", c.Request().URL.Path))
				prometheus.RecordAuthError("unauthenticated")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}

			c.Set(PrincipalKey, principal)

			// Update logger with principal information
			log = log.With(
				zap.Uint("user_id", principal.UserID),
				zap.String("username", principal.Username),
			)
			c.Set("logger", log)

			return next(c)
		}
	}
}

// PrincipalFromContext returns the principal stored by RequireAuth.
func PrincipalFromContext(c echo.Context) (session.Principal, bool) {
	principal, ok := c.Get(PrincipalKey).(session.Principal)
	return principal, ok
}
