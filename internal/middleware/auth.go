package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/etukas/marketplace/internal/repository"
	"github.com/etukas/marketplace/internal/utils"
)

// SessionCookie is the cookie carrying the session token for browser
// clients. Non-browser clients send the same token as a Bearer header.
const SessionCookie = "token"

// Session returns an Echo middleware that authenticates the request from
// the Authorization header or the session cookie, rejects revoked tokens
// via the denylist, and injects "user_id" (uint64) and "role" into the
// request context for handlers and the role guard.
func Session(secret string, sessions *repository.SessionRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := ""
			if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				raw = strings.TrimPrefix(auth, "Bearer ")
			} else if ck, err := c.Cookie(SessionCookie); err == nil {
				raw = ck.Value
			}
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false, "kind": "UNAUTHENTICATED", "message": "missing session token"})
			}

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false, "kind": "UNAUTHENTICATED", "message": "invalid session token"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false, "kind": "UNAUTHENTICATED", "message": "invalid claims"})
			}

			// Logged-out tokens stay on the denylist until natural expiry.
			if sessions != nil && sessions.IsRevoked(c.Request().Context(), utils.HashToken(raw)) {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false, "kind": "UNAUTHENTICATED", "message": "session expired"})
			}

			sub, ok := claims["sub"].(float64) // JSON numbers decode as float64
			if !ok || sub <= 0 {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false, "kind": "UNAUTHENTICATED", "message": "invalid subject"})
			}
			role, _ := claims["role"].(string)

			c.Set("user_id", uint64(sub))
			c.Set("role", role)
			c.Set("token", raw)
			return next(c)
		}
	}
}
