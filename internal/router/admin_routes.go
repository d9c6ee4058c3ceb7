package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/car-rental-reservation/internal/handler"
	"github.com/iliyamo/car-rental-reservation/internal/middleware"
	"github.com/iliyamo/car-rental-reservation/internal/model"
)

// RegisterAdmin registers staff endpoints.  All routes require a JWT with
// the ADMIN role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminReservationHandler, jwtSecret string, mw Middlewares) {
	mw = mw.withDefaults()
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
		mw.RateLimit,
	)
	g.GET("/admin/reservations", h.List)
	g.POST("/admin/reservations/:id/complete", h.Complete)
	g.POST("/admin/reservations/:id/cancel", h.Cancel)
	g.GET("/members/:id/reservations", h.MemberReservations)
}
