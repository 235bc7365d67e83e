package middleware

import (
	"net/http"
	"strings"

	"authhub/internal/common"
	"authhub/internal/repositories"
	"authhub/internal/services"

	"github.com/labstack/echo/v4"
)

// RequireAuth validates the bearer access token through the token service
// (which also refuses pending-MFA tokens) and loads the user onto the
// request context. Inactive or deleted users are rejected even while their
// access token is still cryptographically valid.
func RequireAuth(tokens services.TokenService, users repositories.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Access token required")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token format")
			}

			userID, err := tokens.VerifyAccess(tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			user, err := users.GetByID(c.Request().Context(), userID)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
			}
			if user == nil || !user.IsActive {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.SetRequest(c.Request().WithContext(common.WithUser(c.Request().Context(), user)))
			return next(c)
		}
	}
}
