package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/apperr"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/validation"
)

// NewErrorHandler renders every error returned by a handler as
// {"error": "..."}; validation failures add a "fields" map. Internal errors
// are logged and hidden from the client.
func NewErrorHandler(v *validation.Validator) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			code int
			body echo.Map
		)
		var he *echo.HTTPError
		var verrs validator.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			code = http.StatusBadRequest
			body = echo.Map{"error": "validation failed", "fields": v.Translate(verrs)}
		case errors.As(err, &he):
			code = he.Code
			msg, ok := he.Message.(string)
			if !ok {
				msg = http.StatusText(he.Code)
			}
			body = echo.Map{"error": msg}
		default:
			code = apperr.Status(err)
			if code == http.StatusInternalServerError {
				c.Logger().Errorf("%s %s: %+v", c.Request().Method, c.Path(), err)
				body = echo.Map{"error": "internal server error"}
			} else {
				body = echo.Map{"error": err.Error()}
			}
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, body)
		}
		if err != nil {
			c.Logger().Error(err)
		}
	}
}
