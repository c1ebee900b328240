package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole returns a middleware that enforces that the authenticated
// user holds one of the given roles.  Role values correspond to the
// JWT's "role" claim as stored in context by JWTAuth: catalog writes
// are restricted to ADMIN while reads and bookings accept any
// authenticated role.  Requests with a missing or unknown role are
// rejected with 403 Forbidden.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v := c.Get("role")
			role, ok := v.(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
