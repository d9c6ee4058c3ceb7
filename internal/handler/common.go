package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/car-rental-reservation/internal/middleware"
	"github.com/iliyamo/car-rental-reservation/internal/service"
)

var errUnauthorized = errors.New("invalid user_id in context")

// getUserID returns the authenticated user's id set by JWTAuth.
func getUserID(c echo.Context) (uint64, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, errUnauthorized
	}
	return id, nil
}

// parseID reads a positive integer path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id != 0
}

// validateBody checks the `validate` tags of an already bound
// dst.  On failure it writes the 400 response and returns false.
func validateBody(c echo.Context, dst interface{}) (bool, error) {
	if err := c.Validate(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return false, c.JSON(http.StatusBadRequest, echo.Map{"error": verrs[0].Field() + " is required"})
		}
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	return true, nil
}

// writeError maps service errors to HTTP responses.  Unclassified errors
// are logged and reported as 500 without details.
func writeError(c echo.Context, log logrus.FieldLogger, err error) error {
	var se *service.Error
	if errors.As(err, &se) {
		switch {
		case errors.Is(err, service.ErrValidation):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": se.Message})
		case errors.Is(err, service.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": se.Message})
		case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrCarUnavailable):
			return c.JSON(http.StatusConflict, echo.Map{"error": se.Message})
		}
	}
	log.WithError(err).WithFields(logrus.Fields{
		"method": c.Request().Method,
		"path":   c.Path(),
	}).Error("request failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

func forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
}
