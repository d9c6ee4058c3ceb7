package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/car-rental-reservation/internal/middleware"
	"github.com/iliyamo/car-rental-reservation/internal/model"
)

// ReservationManager is the lifecycle API the HTTP layer drives.
type ReservationManager interface {
	Quote(ctx context.Context, req model.ReservationRequest) (model.ReservationQuote, error)
	Create(ctx context.Context, req model.ReservationRequest) (model.Reservation, error)
	Update(ctx context.Context, id uint64, req model.ReservationRequest) (model.Reservation, error)
	Cancel(ctx context.Context, id uint64) (model.Reservation, error)
	Complete(ctx context.Context, id uint64) (model.Reservation, error)
	Get(ctx context.Context, id uint64) (model.Reservation, error)
	List(ctx context.Context, status *model.ReservationStatus) ([]model.Reservation, error)
	ListByMember(ctx context.Context, memberID uint64) ([]model.Reservation, error)
	CheckAvailability(ctx context.Context, carID uint64, start, end *model.Date) (bool, error)
}

// ReservationHandler serves member reservation endpoints.  Members act on
// their own reservations only; admins may act on any.
type ReservationHandler struct {
	Svc ReservationManager
	Log logrus.FieldLogger
}

func NewReservationHandler(svc ReservationManager, log logrus.FieldLogger) *ReservationHandler {
	if svc == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{Svc: svc, Log: log}
}

// bindRequest decodes a reservation request.  A member's request defaults
// to the member's own id and may not name anyone else.
func (h *ReservationHandler) bindRequest(c echo.Context) (model.ReservationRequest, bool, error) {
	uid, err := getUserID(c)
	if err != nil {
		return model.ReservationRequest{}, false, c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req model.ReservationRequest
	if err := c.Bind(&req); err != nil {
		return req, false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if middleware.Role(c) == model.RoleMember {
		if req.MemberID == 0 {
			req.MemberID = uid
		}
		if req.MemberID != uid {
			return req, false, forbidden(c)
		}
	}
	if ok, err := validateBody(c, &req); !ok {
		return req, false, err
	}
	return req, true, nil
}

// authorize loads reservation id and checks the caller may act on it.
func (h *ReservationHandler) authorize(c echo.Context, id uint64) (bool, error) {
	uid, err := getUserID(c)
	if err != nil {
		return false, c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	res, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return false, writeError(c, h.Log, err)
	}
	if middleware.Role(c) != model.RoleAdmin && res.MemberID != uid {
		return false, forbidden(c)
	}
	return true, nil
}

// Quote handles POST /v1/reservations/quote.
func (h *ReservationHandler) Quote(c echo.Context) error {
	req, ok, err := h.bindRequest(c)
	if !ok {
		return err
	}
	q, err := h.Svc.Quote(c.Request().Context(), req)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, q)
}

// Create handles POST /v1/reservations.
func (h *ReservationHandler) Create(c echo.Context) error {
	req, ok, err := h.bindRequest(c)
	if !ok {
		return err
	}
	res, err := h.Svc.Create(c.Request().Context(), req)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Update handles PUT /v1/reservations/:id.
func (h *ReservationHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	req, ok, err := h.bindRequest(c)
	if !ok {
		return err
	}
	if ok, err := h.authorize(c, id); !ok {
		return err
	}
	res, err := h.Svc.Update(c.Request().Context(), id, req)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Cancel handles POST /v1/reservations/:id/cancel.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	if ok, err := h.authorize(c, id); !ok {
		return err
	}
	res, err := h.Svc.Cancel(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	res, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	if middleware.Role(c) != model.RoleAdmin && res.MemberID != uid {
		return forbidden(c)
	}
	return c.JSON(http.StatusOK, res)
}

// MyReservations handles GET /v1/my-reservations.
func (h *ReservationHandler) MyReservations(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	list, err := h.Svc.ListByMember(c.Request().Context(), uid)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": list, "count": len(list)})
}
