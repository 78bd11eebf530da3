// Package router registers the HTTP routes of the API on an echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pilates-studio/internal/handler"
	"github.com/iliyamo/pilates-studio/internal/metrics"
	"github.com/iliyamo/pilates-studio/internal/middleware"
)

// RegisterRoutes registers the operational endpoints: health and metrics.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
}

// RegisterAuth registers the token endpoints under /v1/auth and the
// protected profile endpoints.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limiter)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret), limiter)
	auth.POST("/auth/logout", a.Logout)
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated catalog. Reference lists go
// through the response cache; class listings never do because they carry
// live availability.
func RegisterPublic(e *echo.Echo, cls *handler.ClassHandler, cat *handler.CatalogHandler, limiter, cache echo.MiddlewareFunc) {
	e.GET("/v1/classes", cls.ListClasses, limiter)
	e.GET("/v1/classes/:id", cls.GetClass, limiter)

	e.GET("/v1/class-types", cat.ClassTypes, limiter, cache)
	e.GET("/v1/instructors", cat.Instructors, limiter, cache)
	e.GET("/v1/studios", cat.Studios, limiter, cache)
	e.GET("/v1/packages", cat.Packages, limiter, cache)
}
