package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/apperr"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/middleware"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/service"
)

const requestTimeout = 5 * time.Second

func timeout(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// bind decodes the request into req and validates it.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	return c.Validate(req)
}

// actor builds the caller from the identity JWTAuth stored in the context.
func actor(c echo.Context) (service.Actor, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return service.Actor{}, errors.Wrap(apperr.ErrUnauthenticated, "no session")
	}
	role, _ := middleware.Role(c)
	return service.Actor{ID: id, Role: role}, nil
}

func paramID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.Wrapf(apperr.ErrInvalidArgument, "invalid %s", name)
	}
	return id, nil
}
