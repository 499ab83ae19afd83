package middleware

import (
	"github.com/labstack/echo/v4"
)

// VersionHeader stamps the API and build version on every response.
func VersionHeader(apiVersion, buildVersion string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("X-API-Version", apiVersion)
			if buildVersion != "" {
				c.Response().Header().Set("X-Build-Version", buildVersion)
			}
			return next(c)
		}
	}
}
