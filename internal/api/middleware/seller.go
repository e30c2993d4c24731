package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireSeller rejects requests whose token does not carry the seller flag.
// Applied to listing-creation routes; mutations of existing listings rely on
// the ownership check instead.
func RequireSeller() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			seller, _ := c.Get("is_seller").(bool)
			if !seller {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "seller account required"})
			}
			return next(c)
		}
	}
}
