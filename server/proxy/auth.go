package proxy

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/satchelhq/satchel/plugin/ai/dispatch"
)

// VerifyToken authenticates proxy calls with the short-lived bearer token the
// dispatch client mints. With no secret configured the middleware passes
// everything through, for single-process deployments where the proxy is only
// reached over loopback.
func VerifyToken(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if secret == "" {
				return next(c)
			}

			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			tokenString, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || tokenString == "" {
				return c.JSON(http.StatusUnauthorized, errBody("missing bearer token"))
			}

			token, err := jwt.Parse(tokenString,
				func(*jwt.Token) (any, error) { return []byte(secret), nil },
				jwt.WithValidMethods([]string{"HS256"}),
				jwt.WithIssuer(dispatch.TokenIssuer),
				jwt.WithExpirationRequired(),
			)
			if err != nil || !token.Valid {
				return c.JSON(http.StatusUnauthorized, errBody("invalid bearer token"))
			}
			return next(c)
		}
	}
}
