// Package router registers the HTTP routes for the service.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-auth-service/internal/auth"
	"github.com/iliyamo/user-auth-service/internal/handler"
	"github.com/iliyamo/user-auth-service/internal/middleware"
)

// RegisterRoutes registers routes that require no authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the signup/sign-in/refresh endpoints under
// /v1/auth and the protected endpoints under /v1, guarded by the identity
// middleware.
func RegisterAuth(e *echo.Echo, h *handler.AuthHandler, svc *auth.Service) {
	g := e.Group("/v1/auth")
	g.POST("/signup", h.Signup)
	g.POST("/sign-in", h.Login)
	g.POST("/refresh", h.Refresh)

	protected := e.Group("/v1")
	protected.Use(middleware.Identity(svc))
	protected.GET("/me", h.Me)
}
