package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ArslanJaveed/idid/middlewares"
	"github.com/ArslanJaveed/idid/models"
)

// CurrentUser serves GET /user for either principal kind, returning the
// model the token resolved to plus its discriminant.
func CurrentUser(c echo.Context) error {
	p := middlewares.Principal(c)

	switch p.Kind {
	case models.KindCompany:
		return c.JSON(http.StatusOK, map[string]any{"kind": p.Kind, "company": p.Company})
	default:
		return c.JSON(http.StatusOK, map[string]any{"kind": p.Kind, "employee": p.Employee})
	}
}
