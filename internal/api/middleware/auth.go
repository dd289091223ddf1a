package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/froker/lending-system/internal/core/service"
)

// AccessTokenCookie is the cookie login sets alongside the Authorization
// header path.
const AccessTokenCookie = "accessToken"

// Auth validates the access token and injects the caller's identity into
// context. The token comes from the Authorization header when present,
// falling back to the session cookie.
func Auth(codec *service.TokenCodec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := extractToken(c)
			if err != nil {
				return err
			}

			claims, err := codec.VerifyAccessToken(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set("user_id", claims.Subject)
			c.Set("email", claims.Email)
			c.Set("name", claims.Name)

			return next(c)
		}
	}
}

func extractToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
		}
		return parts[1], nil
	}

	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	return "", echo.NewHTTPError(http.StatusUnauthorized, "missing credentials")
}
