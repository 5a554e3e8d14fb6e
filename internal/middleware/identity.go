// Package middleware contains the request-time identity extraction step.
// Identity resolution is an explicit middleware that calls the auth service
// and injects the resolved user into the request context; handlers read it
// back via c.Get("user").
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-auth-service/internal/auth"
)

// Identity validates a Bearer access token and stores the resolved profile
// under "user" and the re-issued session under "session". Malformed headers
// are rejected here, before the auth service is ever called.
func Identity(svc *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(header, "Bearer ")
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			session, err := svc.AuthenticateToken(ctx, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
			}

			c.Set("user", session.User)
			c.Set("session", session)
			return next(c)
		}
	}
}
