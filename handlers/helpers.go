package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

// bindAndValidate decodes the JSON body into req and runs its validate tags.
// Field-level failures come back as a 422 with a field -> message map.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]any{"errors": fieldErrors(err)})
	}
	return nil
}

func fieldErrors(err error) map[string]string {
	out := map[string]string{}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		out["_"] = err.Error()
		return out
	}
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			out[field] = "This field is required."
		case "email":
			out[field] = "Must be a valid email address."
		case "min":
			out[field] = "Must be at least " + fe.Param() + " characters."
		case "max":
			out[field] = "Must be at most " + fe.Param() + " characters."
		case "len":
			out[field] = "Must be exactly " + fe.Param() + " characters."
		case "eqfield":
			out[field] = "Does not match " + strings.ToLower(fe.Param()) + "."
		case "oneof":
			out[field] = "Must be one of: " + fe.Param() + "."
		case "gte":
			out[field] = "Must be " + fe.Param() + " or greater."
		default:
			out[field] = "Invalid value."
		}
	}
	return out
}

func httpError(status int, code string) *echo.HTTPError {
	return echo.NewHTTPError(status, map[string]any{"error": code})
}

func parseWallClock(s string) (time.Time, error) {
	return time.Parse("15:04:05", s)
}

func pathID(c echo.Context, name string) (uint, error) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, httpError(http.StatusBadRequest, "INVALID_ID")
	}
	return uint(n), nil
}
