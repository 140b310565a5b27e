package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Error kinds surfaced to clients. Every failure body carries a
// machine-checkable kind next to the human-readable message.
const (
	kindValidation         = "VALIDATION"
	kindNotFound           = "NOT_FOUND"
	kindForbidden          = "FORBIDDEN"
	kindUnauthenticated    = "UNAUTHENTICATED"
	kindInvalidCredentials = "INVALID_CREDENTIALS"
	kindDuplicateEmail     = "DUPLICATE_EMAIL"
	kindDuplicateID        = "DUPLICATE_IDENTIFIER"
	kindEmptyOrder         = "EMPTY_ORDER"
	kindInvalidKind        = "INVALID_KIND"
	kindInvalidStatus      = "INVALID_STATUS"
	kindServerError        = "SERVER_ERROR"
)

// fail writes a structured error response.
func fail(c echo.Context, status int, kind, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "kind": kind, "message": msg})
}

// failFields writes an aggregated validation failure carrying every field
// violation, not just the first.
func failFields(c echo.Context, msgs []string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{
		"success":  false,
		"kind":     kindValidation,
		"message":  "validation failed",
		"messages": msgs,
	})
}

// currentUser pulls the authenticated identity the Session middleware
// stored in context.
func currentUser(c echo.Context) (uint64, string) {
	id, _ := c.Get("user_id").(uint64)
	role, _ := c.Get("role").(string)
	return id, role
}
