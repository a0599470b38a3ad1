package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/identity-service/internal/api/middleware"
	"github.com/99minutos/identity-service/internal/core/ports"
)

// ctxClaims extracts the claims injected by the Auth middleware. A token
// without a subject is structurally valid but unusable, so it is rejected.
func ctxClaims(c echo.Context) (*ports.Claims, error) {
	claims, _ := c.Get(middleware.ClaimsKey).(*ports.Claims)
	if claims == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	if claims.AccountID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "token missing account identity")
	}
	return claims, nil
}
