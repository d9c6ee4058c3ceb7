package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/car-rental-reservation/internal/handler"
	"github.com/iliyamo/car-rental-reservation/internal/middleware"
	"github.com/iliyamo/car-rental-reservation/internal/model"
)

// RegisterMember registers reservation endpoints for members.  Admins may
// use them as well; ownership is checked in the handler.  Creation honors
// Idempotency-Key.
func RegisterMember(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string, mw Middlewares) {
	mw = mw.withDefaults()
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleMember, model.RoleAdmin),
		mw.RateLimit,
	)
	g.POST("/reservations/quote", h.Quote)
	g.POST("/reservations", h.Create, mw.Idempotency)
	g.PUT("/reservations/:id", h.Update)
	g.POST("/reservations/:id/cancel", h.Cancel, mw.Idempotency)
	g.GET("/reservations/:id", h.Get)
	g.GET("/my-reservations", h.MyReservations)
}
