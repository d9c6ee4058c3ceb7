package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/car-rental-reservation/internal/model"
)

// AdminReservationHandler serves staff endpoints.  Routes are guarded by
// RequireRole(ADMIN).
type AdminReservationHandler struct {
	Svc ReservationManager
	Log logrus.FieldLogger
}

func NewAdminReservationHandler(svc ReservationManager, log logrus.FieldLogger) *AdminReservationHandler {
	if svc == nil {
		panic("nil service passed to NewAdminReservationHandler")
	}
	return &AdminReservationHandler{Svc: svc, Log: log}
}

// List handles GET /v1/admin/reservations?status=ACTIVE|CANCELED|COMPLETED.
func (h *AdminReservationHandler) List(c echo.Context) error {
	var status *model.ReservationStatus
	if raw := strings.ToUpper(strings.TrimSpace(c.QueryParam("status"))); raw != "" {
		st, ok := model.ParseReservationStatus(raw)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
		status = &st
	}
	list, err := h.Svc.List(c.Request().Context(), status)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": list, "count": len(list)})
}

// Complete handles POST /v1/admin/reservations/:id/complete.
func (h *AdminReservationHandler) Complete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.Svc.Complete(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Cancel handles POST /v1/admin/reservations/:id/cancel.
func (h *AdminReservationHandler) Cancel(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.Svc.Cancel(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, res)
}

// MemberReservations handles GET /v1/members/:id/reservations.
func (h *AdminReservationHandler) MemberReservations(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid member id"})
	}
	list, err := h.Svc.ListByMember(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": list, "count": len(list)})
}
