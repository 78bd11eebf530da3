package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pilates-studio/internal/handler"
	"github.com/iliyamo/pilates-studio/internal/middleware"
)

// RegisterCustomer registers the booking endpoints. Any authenticated user
// may book; staff accounts book the same way customers do.
func RegisterCustomer(e *echo.Echo, b *handler.BookingHandler, cat *handler.CatalogHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret), limiter)
	g.POST("/bookings", b.CreateBooking)
	g.GET("/bookings", b.ListBookings)
	g.GET("/bookings/:id", b.GetBooking)
	g.DELETE("/bookings/:id", b.CancelBooking)
	g.GET("/me/packages", cat.MyPackages)
}
