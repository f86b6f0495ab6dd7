package middleware

import (
	"context"
	"net/http"
	"strings"

	"rentalhub/internal/common"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// JWTMiddleware validates HS256 bearer tokens issued by the identity
// provider and stores the subject in the request context.
func JWTMiddleware(jwtSecret string) echo.MiddlewareFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, common.CreateErrorResponse("UNAUTHORIZED", "Missing token", nil))
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return c.JSON(http.StatusUnauthorized, common.CreateErrorResponse("UNAUTHORIZED", "Invalid token format", nil))
			}

			claims := jwt.MapClaims{}
			token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				return c.JSON(http.StatusUnauthorized, common.CreateErrorResponse("UNAUTHORIZED", "Invalid token", nil))
			}

			sub, err := claims.GetSubject()
			if err != nil || sub == "" {
				return c.JSON(http.StatusUnauthorized, common.CreateErrorResponse("UNAUTHORIZED", "Missing subject in token", nil))
			}

			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, sub)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("user_id", sub)

			return next(c)
		}
	}
}
