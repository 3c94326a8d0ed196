package middlewares

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ArslanJaveed/idid/auth"
	"github.com/ArslanJaveed/idid/models"
)

// RequireKind gates a route group on the principal kind resolved by
// RequireAuth. Operations declared for companies never see employees and
// vice versa.
func RequireKind(kind models.PrincipalKind) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := auth.RequireKind(Principal(c), kind); err != nil {
				return echo.NewHTTPError(http.StatusForbidden, map[string]any{"error": "FORBIDDEN"})
			}
			return next(c)
		}
	}
}

func RequireCompany() echo.MiddlewareFunc  { return RequireKind(models.KindCompany) }
func RequireEmployee() echo.MiddlewareFunc { return RequireKind(models.KindEmployee) }
