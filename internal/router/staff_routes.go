package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pilates-studio/internal/handler"
	"github.com/iliyamo/pilates-studio/internal/middleware"
	"github.com/iliyamo/pilates-studio/internal/model"
)

// RegisterStaff registers class management under /v1/staff. Instructors
// and admins edit the schedule; only admins deactivate classes.
func RegisterStaff(e *echo.Echo, h *handler.StaffHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/staff",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleInstructor),
		limiter,
	)
	g.POST("/classes", h.CreateClass)
	g.PUT("/classes/:id", h.UpdateClass)
	g.DELETE("/classes/:id", h.DeactivateClass, middleware.RequireRole(model.RoleAdmin))
	g.GET("/classes/:id/bookings", h.Roster)
	g.GET("/classes/:id/roster.xlsx", h.RosterXLSX)
}
