package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/identity-service/internal/core/ports"
)

// Context keys set by Auth.
const (
	ClaimsKey    = "claims"
	RoleKey      = "role"
	AccountIDKey = "account_id"
	EmailKey     = "email"
	AppIDKey     = "app_id"
)

// Auth verifies the bearer token and injects its claims into the context.
// Every failure yields the same 401 so callers cannot tell a forged token
// from an expired one.
func Auth(tokens ports.TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := tokens.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(ClaimsKey, claims)
			c.Set(RoleKey, string(claims.Role))
			c.Set(AccountIDKey, claims.AccountID)
			c.Set(EmailKey, claims.Email)
			c.Set(AppIDKey, claims.AppID)

			return next(c)
		}
	}
}
