package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/krakosik/reputation/internal/dto"
	"github.com/krakosik/reputation/internal/model"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, dto.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, dto.ErrNotAuthorized):
		return http.StatusUnauthorized
	case errors.Is(err, dto.ErrNotFound), errors.Is(err, dto.ErrOutOfRange):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as JSON. Internal failures are logged and hidden from the caller.
func respondError(c echo.Context, err error) error {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logrus.Errorf("%s %s failed: %v", c.Request().Method, c.Path(), err)
		message = "internal failure"
	}

	return c.JSON(status, dto.ErrorResponse{Status: "error", Message: message})
}

func respondRejected(c echo.Context, reason dto.RejectReason) error {
	return c.JSON(http.StatusUnprocessableEntity, dto.RejectedResponse{Status: "rejected", Reason: reason})
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", dto.ErrInvalidRequest, fmt.Sprintf(format, args...))
}

func actorIDParam(c echo.Context) (int64, error) {
	actorID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || actorID <= 0 {
		return 0, invalid("actor id %q is not a positive integer", c.Param("id"))
	}
	return actorID, nil
}

func voteIDParam(c echo.Context) (uint, error) {
	voteID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || voteID == 0 {
		return 0, invalid("vote id %q is not a positive integer", c.Param("id"))
	}
	return uint(voteID), nil
}

func filterParam(c echo.Context) (model.Filter, error) {
	filter, ok := model.ParseFilter(c.QueryParam("filter"))
	if !ok {
		return "", invalid("unknown filter %q", c.QueryParam("filter"))
	}
	return filter, nil
}

// intParam reads an optional non-negative integer query parameter.
func intParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, invalid("%s must be a non-negative integer", name)
	}
	return value, nil
}
