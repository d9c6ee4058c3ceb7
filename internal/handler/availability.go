package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/car-rental-reservation/internal/model"
)

// AvailabilityHandler serves the public car availability lookup.
type AvailabilityHandler struct {
	Svc ReservationManager
	Log logrus.FieldLogger
}

func NewAvailabilityHandler(svc ReservationManager, log logrus.FieldLogger) *AvailabilityHandler {
	return &AvailabilityHandler{Svc: svc, Log: log}
}

// CarAvailability handles GET /v1/cars/:id/availability?start=YYYY-MM-DD&end=YYYY-MM-DD.
func (h *AvailabilityHandler) CarAvailability(c echo.Context) error {
	carID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid car id"})
	}
	start, err := optionalDate(c.QueryParam("start"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start date"})
	}
	end, err := optionalDate(c.QueryParam("end"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end date"})
	}
	available, err := h.Svc.CheckAvailability(c.Request().Context(), carID, start, end)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"carId":     carID,
		"startDate": start,
		"endDate":   end,
		"available": available,
	})
}

// optionalDate parses YYYY-MM-DD; empty input yields nil.
func optionalDate(s string) (*model.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
