package controller

import (
	"github.com/labstack/echo/v4"
)

// CookieCfgMiddleware injects a CookieCfg into the Echo context for each request.
func (ctrl *controller) CookieCfgMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Set("cookiecfg", CookieCfg{IsProd: ctrl.model.Config.Mode == "production"})
		return next(c)
	}
}
