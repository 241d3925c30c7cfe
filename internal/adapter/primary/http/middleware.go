package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	// OwnerHeader carries the principal resolved by the upstream auth layer
	OwnerHeader = "X-User-ID"

	ownerKey = "ownerID"
)

// RequireOwner rejects requests that arrive without an authenticated owner
func RequireOwner() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			owner := strings.TrimSpace(c.Request().Header.Get(OwnerHeader))
			if owner == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "Authentication required",
				})
			}

			// Set user info in context for downstream handlers
			c.Set(ownerKey, owner)
			return next(c)
		}
	}
}

func ownerID(c echo.Context) string {
	owner, _ := c.Get(ownerKey).(string)
	return owner
}
