package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ArslanJaveed/idid/auth"
)

const (
	principalKey = "auth.principal"
	tokenKey     = "auth.token"
)

func extractBearer(c echo.Context) (string, error) {
	h := c.Request().Header.Get("Authorization")
	if h == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, map[string]any{"error": "MISSING_AUTH_HEADER"})
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, map[string]any{"error": "INVALID_AUTH_HEADER"})
	}
	return parts[1], nil
}

// RequireAuth resolves the bearer token to a principal (company or employee)
// and attaches it to the request context. Revoked and unknown tokens are
// indistinguishable to the caller.
func RequireAuth(svc *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := extractBearer(c)
			if err != nil {
				return err
			}
			p, err := svc.ResolveByToken(raw)
			if err != nil {
				if errors.Is(err, auth.ErrNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, map[string]any{"error": "INVALID_TOKEN"})
				}
				return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{"error": "AUTH_LOOKUP_FAILED"})
			}
			c.Set(principalKey, p)
			c.Set(tokenKey, raw)
			return next(c)
		}
	}
}

// Principal returns the resolved principal attached by RequireAuth.
func Principal(c echo.Context) *auth.Principal {
	p, _ := c.Get(principalKey).(*auth.Principal)
	return p
}

// Token returns the raw bearer token attached by RequireAuth.
func Token(c echo.Context) string {
	t, _ := c.Get(tokenKey).(string)
	return t
}
